// entry point to app :)
package main

import (
	"github.com/sirupsen/logrus"

	"github.com/careplus/clinic-backend/config"
	"github.com/careplus/clinic-backend/internal/appserver"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	appserver.NewServer(cfg)
}
