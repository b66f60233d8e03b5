package engine

import "errors"

// Validation rejections. Each leaves the state unchanged and is safe to retry
// once the reported reason is resolved.
var (
	ErrUnknownAction         = errors.New("unknown action")
	ErrUnknownPlayer         = errors.New("unknown player")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrUnavailable           = errors.New("action not available in this mode")
	ErrNoCell                = errors.New("select a cell first")
	ErrOutsideZone           = errors.New("cell is outside the trade zone")
	ErrMonument              = errors.New("monument cell cannot be traded")
	ErrAlreadyExplored       = errors.New("cell already explored")
	ErrNotExplored           = errors.New("cell not yet explored")
	ErrAlreadyOwned          = errors.New("cell already owned")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientEnergy    = errors.New("insufficient energy")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrPriceTooLow           = errors.New("price below minimum")
	ErrNotListed             = errors.New("cell is not listed for sale")
	ErrOwnCell               = errors.New("cannot buy your own cell")
	ErrNoBase                = errors.New("build a base first")
	ErrTerraformComplete     = errors.New("terraforming already complete")
)

var rejections = []error{
	ErrUnknownAction, ErrUnknownPlayer, ErrNotYourTurn, ErrUnavailable,
	ErrNoCell, ErrOutsideZone, ErrMonument, ErrAlreadyExplored, ErrNotExplored,
	ErrAlreadyOwned, ErrInsufficientBalance, ErrInsufficientEnergy,
	ErrInsufficientResources, ErrPriceTooLow, ErrNotListed, ErrOwnCell,
	ErrNoBase, ErrTerraformComplete,
}

// IsRejection reports whether err is a validation rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
