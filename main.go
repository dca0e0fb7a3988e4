package main

import "photo-points-backend/cmd"

func main() {
	cmd.Execute()
}
