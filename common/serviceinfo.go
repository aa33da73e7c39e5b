package common

import (
	"os"

	"github.com/google/uuid"
)

var (
	serviceName     = "portfolio"
	serviceInstance = ""
)

func GetServiceName() string {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		return name
	}
	return serviceName
}

func GetServiceInstance() string {
	if serviceInstance == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = uuid.New().String()
		}
		serviceInstance = hostname
	}
	return serviceInstance
}
