package main

import "fitfeed-backend/cmd"

func main() {
	cmd.Run()
}
