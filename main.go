package main

import (
	"flag"
	"log"

	"EmberChat/commands"
	"EmberChat/internal/chat"
)

func main() {
	configPath := flag.String("config", "data/chat.yml", "Path to the server configuration file")
	addr := flag.String("addr", "", "TCP address to listen on (overrides the config file)")
	adminAccount := flag.String("admin", "admin", "Account granted administrator privileges")
	flag.Parse()

	config, err := chat.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		config.Addr = *addr
	}

	core, err := chat.NewCore(config)
	if err != nil {
		log.Fatal(err)
	}
	core.Accounts.SetAdminAccount(*adminAccount)

	if err := chat.ListenAndServe(core, commands.Dispatch); err != nil {
		log.Fatal(err)
	}
}
