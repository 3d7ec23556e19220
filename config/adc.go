// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// FindAPIKeyWithADC looks up the Maps key by display name in the project
// owning the Application Default Credentials, or in project when not empty.
func FindAPIKeyWithADC(ctx context.Context, project, displayName string) (string, error) {
	if project == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return "", fmt.Errorf("finding default credentials: %w", err)
		}

		project = creds.ProjectID
	}

	if project == "" {
		return "", errors.New("no project id found in credentials, set DIALADDR_ADC_PROJECT")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", project),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the secret.
		log.Info().Str("key", key.Name).Msg("found key resource, retrieving secret")

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but its key string is empty", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, project)
}
