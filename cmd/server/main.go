package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Finamite/TMS.finamite-sub001/internal/config"
	"github.com/Finamite/TMS.finamite-sub001/internal/serverapp"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	path := os.Getenv("TMS_CONFIG")
	if path == "" {
		path = "tms_config.yml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("load config: %v", err)
		}
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:  cfg,
		DataDir: cfg.Server.DataDir,
		Logger:  log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
