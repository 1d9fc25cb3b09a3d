package main

import "photo-gallery/cmd"

func main() {
	cmd.Execute()
}
