package main

import (
	"github.com/minitweet/tweetstack/internal/cli"
)

func main() {
	cli.Execute()
}
