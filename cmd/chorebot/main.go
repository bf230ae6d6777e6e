package main

import "chorebot/cmd/chorebot/root"

func main() {
	root.Execute()
}
