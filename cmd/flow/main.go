// Command flow plays todo event scripts through the reconciliation engine
// and prints what the terminal backend shows after each pass.
package main

func main() {
	Execute()
}
