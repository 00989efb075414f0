package util

import (
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"log"
	"os"
	"strings"
)

var DB *sql.DB
var JWTSecret string

func getDBCredentialsandPopulateJWTSecret() (string, error) {
	if env := os.Getenv("ENV"); env == "DEV" || env == "DEV_DB" {
		var dbUser string
		var dbPass string
		var dbHost string
		var dbPort string
		var dbName string
		var sslMode string
		err := godotenv.Load()
		if err != nil {
			return "", errors.New("couldn't get environment variables")
		}
		if os.Getenv("ENV") == "DEV_DB" {
			dbUser = os.Getenv("LOCAL_DB_USER")
			dbPass = os.Getenv("LOCAL_DB_PASS")
			dbHost = os.Getenv("LOCAL_DB_HOST")
			dbPort = os.Getenv("LOCAL_DB_PORT")
			dbName = os.Getenv("LOCAL_DB_NAME")
			sslMode = os.Getenv("SSL_MODE")
		} else {
			dbUser = os.Getenv("DB_USER")
			dbPass = os.Getenv("DB_PASS")
			dbHost = os.Getenv("DB_HOST")
			dbPort = os.Getenv("DB_PORT")
			dbName = os.Getenv("DB_NAME")
			sslMode = os.Getenv("SSL_MODE")
		}

		JWTSecret = os.Getenv("JWT_SECRET")
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", dbHost, dbPort, dbUser, dbPass, dbName, sslMode), nil
	} else {
		name := os.Getenv("DB_SECRET_NAME")
		if name == "" {
			return "", errors.New("DB_SECRET_NAME not set")
		}
		ctx := context.Background()
		client, err := secretmanager.NewClient(ctx)
		if err != nil {
			return "", errors.New("couldn't get cloud secret")
		}
		defer client.Close()
		req := &secretmanagerpb.AccessSecretVersionRequest{
			Name: name,
		}
		result, err := client.AccessSecretVersion(ctx, req)
		if err != nil {
			log.Fatal("failed to access secret version: ", err)
		}
		// Secret layout: "<jwt-secret> <connection string...>"
		stringVal := string(result.Payload.Data)
		words := strings.Fields(stringVal)
		JWTSecret = words[0]
		return strings.Join(words[1:], " "), nil
	}
}

func DBConnectAndPopulateDBVar() error {
	connectString, err := getDBCredentialsandPopulateJWTSecret()
	if err != nil {
		return errors.New("couldn't get credentials")
	}
	DB, err = sql.Open("postgres", connectString)
	if err != nil {
		return err
	}
	if err = DB.Ping(); err != nil {
		return err
	}
	return nil
}
