package main

import "github.com/tkaraca/facegate/cmd"

func main() {
	cmd.Execute()
}
