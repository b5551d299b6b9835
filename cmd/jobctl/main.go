package main

import "github.com/LENAX/job-processing/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
