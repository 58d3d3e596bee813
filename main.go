package main

import "github.com/CiaoHost/CiaoHostBookingAI-sub001/cmd"

func main() {
	cmd.Execute()
}
