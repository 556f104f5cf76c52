// Package simulator serves an in-process test controller over HTTP for the
// REST client tests. It issues RS256 access tokens, gates the API behind the
// EULA and keeps every resource in memory.
package simulator

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	User     = "admin"
	Password = "CyPerf&Keysight#1"

	tokenTTL = time.Hour
)

type LicenseServer struct {
	ID               int    `json:"id"`
	HostName         string `json:"hostName"`
	ConnectionStatus string `json:"connectionStatus"`
	User             string `json:"user,omitempty"`
	TrustCertificate bool   `json:"trustNewCertificate"`
}

type Configuration struct {
	ID          int    `json:"id"`
	DisplayName string `json:"displayName"`
	ConfigURL   string `json:"configUrl"`
	Readonly    bool   `json:"readonly"`
}

type Session struct {
	ID        string `json:"id"`
	ConfigURL string `json:"configUrl"`
}

type Agent struct {
	ID string `json:"id"`
	IP string `json:"IP"`
}

type job struct {
	ID      int             `json:"id"`
	URL     string          `json:"url"`
	State   string          `json:"state"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`

	polls  int
	final  string
	onDone func()
}

// SegmentUpdate is the body of one network segment update.
type SegmentUpdate struct {
	SessionID string
	ProfileID string
	SegmentID string
	Body      map[string]any
}

type Simulator struct {
	mu sync.Mutex

	server *httptest.Server
	key    *rsa.PrivateKey

	unavailable    int
	eulaAccepted   bool
	tokensIssued   int
	jobPolls       int
	licenseStatus  string
	licenseServers []LicenseServer
	configurations []Configuration
	sessions       []Session
	testStatus     map[string]string
	sessionConfigs map[string]json.RawMessage
	newSessionDoc  json.RawMessage
	agents         []Agent
	jobs           map[int]*job
	updates        []SegmentUpdate
	nextID         int
}

func New() (*Simulator, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}

	s := &Simulator{
		key:            key,
		licenseStatus:  "ESTABLISHED",
		testStatus:     map[string]string{},
		sessionConfigs: map[string]json.RawMessage{},
		jobs:           map[int]*job{},
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true), ginzap.RecoveryWithZap(zap.L(), true), s.booting)
	s.routes(engine)

	s.server = httptest.NewServer(engine)
	return s, nil
}

func (s *Simulator) URL() string {
	return s.server.URL
}

func (s *Simulator) Close() {
	s.server.Close()
}

// Unavailable makes the next n requests fail with 503.
func (s *Simulator) Unavailable(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = n
}

func (s *Simulator) SetJobPolls(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobPolls = n
}

// SetLicenseStatus sets the status new license servers settle in.
func (s *Simulator) SetLicenseStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.licenseStatus = status
}

func (s *Simulator) AddAgent(id, ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents = append(s.agents, Agent{ID: id, IP: ip})
}

func (s *Simulator) AddConfiguration(c Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configurations = append(s.configurations, c)
}

// SetSessionConfig stores the configuration document of a session.
func (s *Simulator) SetSessionConfig(sessionID string, doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionConfigs[sessionID] = json.RawMessage(doc)
}

// SetNewSessionConfig sets the configuration document of every session created afterwards.
func (s *Simulator) SetNewSessionConfig(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newSessionDoc = json.RawMessage(doc)
}

func (s *Simulator) SetTestStatus(sessionID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testStatus[sessionID] = status
}

func (s *Simulator) EULAAccepted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eulaAccepted
}

func (s *Simulator) TokensIssued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokensIssued
}

func (s *Simulator) LicenseServers() []LicenseServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LicenseServer(nil), s.licenseServers...)
}

func (s *Simulator) Configurations() []Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Configuration(nil), s.configurations...)
}

func (s *Simulator) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Session(nil), s.sessions...)
}

func (s *Simulator) Updates() []SegmentUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SegmentUpdate(nil), s.updates...)
}

// GenerateToken signs an access token for user.
func (s *Simulator) GenerateToken(user string) (string, error) {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		NotBefore: jwt.NewNumericDate(time.Now()),
		Issuer:    s.server.URL,
		Subject:   user,
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{"clt-wap"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (s *Simulator) routes(engine *gin.Engine) {
	engine.POST("/auth/realms/keysight/protocol/openid-connect/token", s.handleToken)
	engine.GET("/eula/v1/eula/CyPerf", s.handleGetEULA)
	engine.POST("/eula/v1/eula/CyPerf", s.handleAcceptEULA)

	api := engine.Group("/api/v2", s.authenticated)

	api.GET("/license-servers", s.handleListLicenseServers)
	api.POST("/license-servers", s.handleCreateLicenseServers)
	api.GET("/license-servers/:id", s.handleGetLicenseServer)
	api.DELETE("/license-servers/:id", s.handleDeleteLicenseServer)

	api.GET("/configs", s.handleListConfigurations)
	api.DELETE("/configs/:id", s.handleDeleteConfiguration)
	api.POST("/configs/operations/import", s.handleImport)
	api.GET("/configs/operations/import/:job", s.handleGetJob)

	api.GET("/sessions", s.handleListSessions)
	api.POST("/sessions", s.handleCreateSessions)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
	api.GET("/sessions/:id/test", s.handleGetTest)
	api.GET("/sessions/:id/config/config", s.handleGetSessionConfig)
	api.PATCH("/sessions/:id/config/config/NetworkProfiles/:profile/IPNetworkSegment/:segment", s.handleUpdateSegment)
	api.POST("/sessions/:id/test-run/operations/:op", s.handleTestRun)
	api.GET("/sessions/:id/test-run/operations/:op/:job", s.handleGetJob)

	api.GET("/agents", s.handleListAgents)
}

func (s *Simulator) booting(c *gin.Context) {
	s.mu.Lock()
	down := s.unavailable > 0
	if down {
		s.unavailable--
	}
	s.mu.Unlock()

	if down {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "controller is starting"})
		return
	}
	c.Next()
}

func (s *Simulator) authenticated(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}
	_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return &s.key.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}
	if !s.EULAAccepted() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "EULA not accepted"})
		return
	}
	c.Next()
}

func (s *Simulator) handleToken(c *gin.Context) {
	if c.PostForm("grant_type") != "password" || c.PostForm("username") != User || c.PostForm("password") != Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_grant"})
		return
	}
	token, err := s.GenerateToken(c.PostForm("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	s.tokensIssued++
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"access_token": token, "expires_in": int(tokenTTL.Seconds()), "token_type": "Bearer"})
}

func (s *Simulator) handleGetEULA(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accepted": s.EULAAccepted()})
}

func (s *Simulator) handleAcceptEULA(c *gin.Context) {
	var body struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	s.eulaAccepted = body.Accepted
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (s *Simulator) handleListLicenseServers(c *gin.Context) {
	c.JSON(http.StatusOK, s.LicenseServers())
}

func (s *Simulator) handleCreateLicenseServers(c *gin.Context) {
	var specs []struct {
		HostName            string `json:"hostName"`
		TrustNewCertificate bool   `json:"trustNewCertificate"`
		User                string `json:"user"`
		Password            string `json:"password"`
	}
	if err := c.ShouldBindJSON(&specs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	created := make([]LicenseServer, 0, len(specs))
	for _, spec := range specs {
		s.nextID++
		ls := LicenseServer{
			ID:               s.nextID,
			HostName:         spec.HostName,
			ConnectionStatus: "IN_PROGRESS",
			User:             spec.User,
			TrustCertificate: spec.TrustNewCertificate,
		}
		s.licenseServers = append(s.licenseServers, ls)
		created = append(created, ls)
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Simulator) handleGetLicenseServer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.licenseServers {
		if s.licenseServers[i].ID == id {
			s.licenseServers[i].ConnectionStatus = s.licenseStatus
			c.JSON(http.StatusOK, s.licenseServers[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "license server not found"})
}

func (s *Simulator) handleDeleteLicenseServer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ls := range s.licenseServers {
		if ls.ID == id {
			s.licenseServers = append(s.licenseServers[:i], s.licenseServers[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "license server not found"})
}

func (s *Simulator) handleListConfigurations(c *gin.Context) {
	col, val := c.Query("searchCol"), c.Query("searchVal")
	var out []Configuration
	for _, cfg := range s.Configurations() {
		if col == "displayName" && val != "" && cfg.DisplayName != val {
			continue
		}
		out = append(out, cfg)
	}
	if out == nil {
		out = []Configuration{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Simulator) handleDeleteConfiguration(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cfg := range s.configurations {
		if cfg.ID == id {
			s.configurations = append(s.configurations[:i], s.configurations[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "configuration not found"})
}

func (s *Simulator) handleImport(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	cfg := Configuration{
		ID:          s.nextID,
		DisplayName: strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)),
		ConfigURL:   fmt.Sprintf("appsec-%d", s.nextID),
	}
	result, _ := json.Marshal([]Configuration{cfg})
	j := s.newJob("/api/v2/configs/operations/import", result, func() {
		s.configurations = append(s.configurations, cfg)
	})
	c.JSON(http.StatusAccepted, j)
}

func (s *Simulator) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, s.Sessions())
}

func (s *Simulator) handleCreateSessions(c *gin.Context) {
	var body []Session
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := make([]Session, 0, len(body))
	for _, b := range body {
		s.nextID++
		sess := Session{ID: fmt.Sprintf("appsec-%d", s.nextID), ConfigURL: b.ConfigURL}
		s.sessions = append(s.sessions, sess)
		s.testStatus[sess.ID] = "STOPPED"
		if len(s.newSessionDoc) > 0 {
			s.sessionConfigs[sess.ID] = s.newSessionDoc
		}
		created = append(created, sess)
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Simulator) handleDeleteSession(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if sess.ID != id {
			continue
		}
		if s.testStatus[id] != "STOPPED" {
			c.JSON(http.StatusConflict, gin.H{"message": "test is running"})
			return
		}
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
		delete(s.testStatus, id)
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
}

func (s *Simulator) handleGetTest(c *gin.Context) {
	s.mu.Lock()
	status, ok := s.testStatus[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Simulator) handleGetSessionConfig(c *gin.Context) {
	s.mu.Lock()
	doc, ok := s.sessionConfigs[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	c.Data(http.StatusOK, "application/json", doc)
}

func (s *Simulator) handleUpdateSegment(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, SegmentUpdate{
		SessionID: c.Param("id"),
		ProfileID: c.Param("profile"),
		SegmentID: c.Param("segment"),
		Body:      body,
	})
	c.Status(http.StatusNoContent)
}

func (s *Simulator) handleTestRun(c *gin.Context) {
	id, op := c.Param("id"), c.Param("op")
	var next string
	switch op {
	case "start":
		next = "STARTED"
	case "stop":
		next = "STOPPED"
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown operation"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.testStatus[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "session not found"})
		return
	}
	// Traffic jobs come back without a url and are polled at the submit path.
	j := s.newJob("", nil, func() { s.testStatus[id] = next })
	c.JSON(http.StatusAccepted, j)
}

func (s *Simulator) handleGetJob(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("job"))
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "operation not found"})
		return
	}
	if j.polls > 0 {
		j.polls--
	} else if j.State == "IN_PROGRESS" {
		j.State = j.final
		if j.onDone != nil {
			j.onDone()
		}
	}
	c.JSON(http.StatusOK, j)
}

func (s *Simulator) handleListAgents(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]Agent{}, s.agents...))
}

// newJob registers an in-progress job. It must be called with the lock held.
func (s *Simulator) newJob(base string, result json.RawMessage, onDone func()) job {
	s.nextID++
	j := &job{
		ID:     s.nextID,
		State:  "IN_PROGRESS",
		Result: result,
		polls:  s.jobPolls,
		final:  "SUCCESS",
		onDone: onDone,
	}
	if base != "" {
		j.URL = fmt.Sprintf("%s/%d", base, j.ID)
	}
	s.jobs[j.ID] = j
	return *j
}
