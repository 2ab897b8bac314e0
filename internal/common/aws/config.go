// Package aws wraps the SES and SNS clients used by the email and SMS providers.
package aws

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go"

	apperrors "lead-automation/internal/common/errors"
)

// LoadConfig resolves credentials from the default chain for region.
func LoadConfig(ctx context.Context, region string) (awssdk.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// foldError maps SDK failures onto the shared taxonomy. An API error means AWS
// answered; anything else never got a response.
func foldError(service string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !stderrors.As(err, &apiErr) {
		return apperrors.NewTransportError(service, err)
	}

	status := http.StatusBadRequest
	var respErr *awshttp.ResponseError
	if stderrors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}
	return apperrors.NewProtocolError(service, status, apiErr.ErrorCode()+": "+apiErr.ErrorMessage())
}
