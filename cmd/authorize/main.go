// Command authorize performs the one-time authorization-code bootstrap:
// it prints the consent URL, reads the pasted code and persists the
// first credential record. Run it once; the bot refreshes from there.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/athlogic/salesbot/internal/config"
	"github.com/athlogic/salesbot/token"
	"github.com/athlogic/salesbot/token/filerepo"
)

const requestedScope = "site-info:write order:read"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("authorization failed")
	}
}

func run() error {
	c, err := config.New()
	if err != nil {
		return err
	}
	if c.GetClientID() == "" || c.GetClientSecret() == "" {
		return errors.New("IMWEB_CLIENT_ID and IMWEB_CLIENT_SECRET are required")
	}
	if c.GetRedirectURI() == "" || c.GetSiteCode() == "" {
		return errors.New("IMWEB_REDIRECT_URI and IMWEB_SITE_CODE are required")
	}

	params := url.Values{
		"responseType": {"code"},
		"clientId":     {c.GetClientID()},
		"redirectUri":  {c.GetRedirectURI()},
		"scope":        {requestedScope},
		"siteCode":     {c.GetSiteCode()},
		"state":        {uuid.New().String()},
	}

	fmt.Println("=== One-time OAuth authorization ===")
	fmt.Println()
	fmt.Println("1. Open this URL in a browser:")
	fmt.Printf("   %s/oauth2/authorize?%s\n", c.GetAPIBaseURL(), params.Encode())
	fmt.Println("2. Log in and approve the requested access.")
	fmt.Println("3. Copy the code parameter from the redirected URL.")
	fmt.Println()
	fmt.Print("Authorization code: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("no authorization code entered")
	}

	tokens, err := token.NewManager(filerepo.New(c.GetTokenFile()), c, c.GetClientID(), c.GetClientSecret(), c.GetAPIBaseURL())
	if err != nil {
		return err
	}

	if _, err := tokens.Exchange(context.Background(), code, c.GetRedirectURI()); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Token pair stored in %s. The bot will keep it refreshed.\n", c.GetTokenFile())
	return nil
}
