package main

import (
	"github.com/villagefoodie/foodie-events/internal/cli"
)

func main() {
	cli.Execute()
}
