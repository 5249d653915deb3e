package main

import (
	"github.com/iamvkosarev/ai-mail-assistant/cmd/mail-assistant/cmd"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
