package main

import (
	"github.com/lexcodex/dashbot/app/cmd"
)

func main() {
	cmd.Execute()
}
