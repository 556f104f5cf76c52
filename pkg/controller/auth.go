package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	tokenPath   = "/auth/realms/keysight/protocol/openid-connect/token"
	tokenClient = "clt-wap"
	eulaPath    = "/eula/v1/eula/CyPerf"
	EULAEnvVar  = "CYPERF_EULA_ACCEPTED"
	tokenLeeway = 30 * time.Second
)

var ErrEULANotAccepted = errors.New("the controller EULA is not accepted")

type eulaPolicy struct {
	interactive bool
	in          io.Reader
	out         io.Writer
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type eulaStatus struct {
	Accepted bool `json:"accepted"`
}

// Ping succeeds once the controller accepts logins.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.authorize(ctx)
	return err
}

// authorize returns a valid access token, accepting the EULA first if needed.
func (c *Client) authorize(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expires, accepted := c.token, c.tokenExpires, c.eulaAccepted
	c.mu.Unlock()

	if !accepted {
		if err := c.acceptEULA(ctx); err != nil {
			return "", err
		}
	}
	if token != "" && time.Now().Before(expires) {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", tokenClient)
	form.Set("username", c.user)
	form.Set("password", c.password)

	var resp tokenResponse
	err := c.do(ctx, request{
		operation:   "get access token",
		method:      http.MethodPost,
		path:        tokenPath,
		rawBody:     []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("controller returned an empty access token")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = resp.AccessToken
	c.tokenExpires = time.Now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenLeeway)
	return c.token, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *Client) acceptEULA(ctx context.Context) error {
	var status eulaStatus
	err := c.do(ctx, request{
		operation: "get eula",
		method:    http.MethodGet,
		path:      eulaPath,
		anonymous: true,
	}, &status)
	if err != nil {
		return err
	}

	if !status.Accepted {
		ok, err := c.eula.accept()
		if err != nil {
			return err
		}
		if !ok {
			return ErrEULANotAccepted
		}
		err = c.do(ctx, request{
			operation: "accept eula",
			method:    http.MethodPost,
			path:      eulaPath,
			body:      eulaStatus{Accepted: true},
			anonymous: true,
		}, nil)
		if err != nil {
			return err
		}
		zap.S().Named("controller_client").Infow("EULA accepted", "controller", c.baseURL)
	}

	c.mu.Lock()
	c.eulaAccepted = true
	c.mu.Unlock()
	return nil
}

func (p eulaPolicy) accept() (bool, error) {
	if !p.interactive {
		v, err := strconv.ParseBool(os.Getenv(EULAEnvVar))
		return err == nil && v, nil
	}

	in, out := p.in, p.out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "The controller EULA must be accepted to continue. Do you accept it? [y/N]: ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
