package main

import "github.com/cdalton713/easier-blob-storage/cmd"

func main() {
	cmd.Execute()
}
