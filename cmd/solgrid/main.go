// Command solgrid runs the hex-grid territory exchange.
package main

func main() {
	Execute()
}
