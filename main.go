package main

import "github/chapool/token-transfer/cmd"

func main() {
	cmd.Execute()
}
