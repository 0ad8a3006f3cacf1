// Command enroll runs the customer registration Lambda.
//
// The DynamoDB table name comes from the DYNAMODB_TABLE_NAME environment
// variable; AWS credentials and region come from the default config chain.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/enroll/handler"
	"github.com/jacentio/enroll/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	s := store.New(dynamodb.NewFromConfig(awsCfg), store.Config{
		TableName: os.Getenv("DYNAMODB_TABLE_NAME"),
	})

	h := handler.NewHandler(s, logger)
	lambda.Start(h.HandleRegister)
}
