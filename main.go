package main

import "vaultsearch/cmd"

func main() {
	cmd.Execute()
}
