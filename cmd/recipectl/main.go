// Command recipectl is the maintenance CLI for the recipebox backend.
package main

func main() {
	Execute()
}
