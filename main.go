package main

import "github.com/dmorgan81/promptshot/cmd"

func main() {
	cmd.Execute()
}
