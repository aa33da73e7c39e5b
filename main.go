package main

import (
	"log"
	"net/http"
	"os"
	"portfolio/account"
	"portfolio/bizerror"
	"portfolio/domain"
	"portfolio/domain/catalog/catalogrest"
	"portfolio/domain/sequence"
	"portfolio/es"
	"portfolio/event"
	"portfolio/indices"
	"portfolio/indices/search"
	"portfolio/infra/tracing"
	"portfolio/persistence"
	"portfolio/servehttp"
	"portfolio/session"
	"portfolio/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	if closer := tracing.Bootstrap(); closer != nil {
		defer closer.Close()
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&domain.CatalogEntry{}, &sequence.SequenceCounter{}, &event.EventRecord{},
		&account.User{}, &account.Role{}, &account.Permission{},
		&account.RolePermissionBinding{}, &account.UserRoleBinding{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		log.Fatalf("security bootstrap failed %v\n", err)
	}

	if os.Getenv("ELASTICSEARCH_URL") != "" {
		es.CreateClientFromEnv()
		indices.RegisterCatalogIndexEventHandler()
	}

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "portfolio")
	})

	sessions.RegisterSessionsHandler(engine)
	catalogrest.RegisterCatalogEntriesRestAPI(engine, session.SimpleAuthFilter())
	catalogrest.RegisterCatalogTransitionsRestAPI(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())
	search.RegisterCatalogSearchRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
