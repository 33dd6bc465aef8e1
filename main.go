package main

import (
	"github.com/farrt/build-tools/cmd"
)

func main() {
	cmd.Execute()
}
