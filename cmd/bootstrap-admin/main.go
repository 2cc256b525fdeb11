// Command bootstrap-admin (re)creates the portal's admin account.
// Any existing account with the same e-mail is removed first.
package main

import (
	"log"
	"os"

	"internship_portal/internal/config"
	"internship_portal/internal/model"
	"internship_portal/internal/repository"
	"internship_portal/internal/service"
	"internship_portal/internal/utils"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	app := &cli.App{
		Name:  "bootstrap-admin",
		Usage: "create or replace the admin account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", EnvVars: []string{"ADMIN_EMAIL"}, Required: true},
			&cli.StringFlag{Name: "password", EnvVars: []string{"ADMIN_PASSWORD"}, Required: true},
			&cli.StringFlag{Name: "name", EnvVars: []string{"ADMIN_NAME"}, Value: "Admin"},
			&cli.StringFlag{Name: "surname", EnvVars: []string{"ADMIN_SURNAME"}, Value: "Principal"},
			&cli.StringFlag{Name: "national-id", EnvVars: []string{"ADMIN_NATIONAL_ID"}, Value: "00000000"},
			&cli.StringFlag{Name: "phone", EnvVars: []string{"ADMIN_PHONE"}},
			&cli.StringFlag{Name: "program", EnvVars: []string{"ADMIN_PROGRAM"}, Value: "Systems Administration"},
			&cli.StringFlag{Name: "institution", EnvVars: []string{"ADMIN_INSTITUTION"}, Value: "Portal Administration"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("bootstrap-admin: %v", err)
	}
}

func run(c *cli.Context) error {
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return err
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return err
	}

	dbPool, err := config.ConnectDB(c.Context, dbCfg)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	if err := config.AutoMigrate(c.Context, dbPool); err != nil {
		return err
	}

	redisClient, err := config.ConnectRedis(c.Context, appCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	authService := service.NewAuthService(
		repository.NewUserRepository(dbPool, dbCfg.QueryTimeout),
		repository.NewSessionRepository(redisClient, dbCfg.QueryTimeout),
		utils.NewJWTUtil(appCfg.JWTSecret, appCfg.JWTExpiration),
	)

	req := model.RegisterRequest{
		Email:       c.String("email"),
		Password:    c.String("password"),
		Name:        c.String("name"),
		Surname:     c.String("surname"),
		NationalID:  c.String("national-id"),
		Program:     c.String("program"),
		Institution: c.String("institution"),
	}
	if phone := c.String("phone"); phone != "" {
		req.Phone = &phone
	}

	user, err := authService.BootstrapAdmin(c.Context, req)
	if err != nil {
		return err
	}
	log.Printf("Admin account ready: %s (ID: %d)", user.Email, user.ID)
	return nil
}
