package main

import "github.com/sunerpy/mlm/cmd"

func main() {
	cmd.Execute()
}
