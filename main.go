package main

import "github.com/kasuganosora/middleearth/cmd"

func main() {
	cmd.Execute()
}
