package main

import "github.com/bascanada/yategrep/cmd"

func main() {
	cmd.Execute()
}
