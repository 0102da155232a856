package main

import "github.com/shouni/go-fin-novel-kit/cmd"

// main は fin-novel の CLI を起動するだけなのだ。
func main() {
	cmd.Execute()
}
