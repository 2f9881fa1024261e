package main

import (
	"os"

	"hireflow/internal/hireflow"
)

func main() {
	os.Exit(hireflow.Run(os.Args[1:]))
}
