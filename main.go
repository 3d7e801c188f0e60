package main

import "github.com/notargets/gofvns/cmd"

func main() {
	cmd.Execute()
}
