package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cyperf-demos/pan-demo-setup/internal/models"
	"github.com/cyperf-demos/pan-demo-setup/internal/services"
	"github.com/cyperf-demos/pan-demo-setup/test/fakeclient"
)

var _ = Describe("AgentAssignmentEngine", func() {
	var (
		ctx     context.Context
		fake    *fakeclient.Controller
		engine  *services.AgentAssignmentEngine
		session *models.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = fakeclient.New()
		fake.Agents = []models.Agent{
			{ID: "agent-1", IP: "10.0.2.10"},
			{ID: "agent-2", IP: "10.0.2.11"},
			{ID: "agent-3", IP: "10.0.3.10"},
		}
		engine = services.NewAgentAssignmentEngine(fake, services.NewRetryGate(5*time.Millisecond, time.Second))
		session = &models.Session{
			ID: "session-1",
			Config: &models.SessionConfig{NetworkProfiles: []models.NetworkProfile{{
				ID: "1",
				IPNetworkSegments: []models.IPNetworkSegment{
					{ID: "1", Name: "PAN-VM-FW-Client"},
					{ID: "2", Name: "PAN-VM-FW-Server", AgentAssignments: &models.AgentAssignments{
						ByID:  []models.AgentAssignmentDetails{models.NewAgentAssignmentDetails("agent-0")},
						ByTag: []string{"server"},
					}},
					{ID: "3", Name: "Untouched"},
				},
			}}},
		}
	})

	// Given a segment without an assignment container
	// When agents are assigned
	// Then the container is created with the resolved agents and empty tags
	It("should initialise the assignment container", func() {
		Expect(engine.Assign(ctx, session, models.AgentMap{
			"PAN-VM-FW-Client": {"10.0.2.10", "10.0.2.11"},
		}, false)).To(Succeed())

		seg := session.Config.NetworkProfiles[0].IPNetworkSegments[0]
		Expect(seg.AgentAssignments).NotTo(BeNil())
		Expect(seg.AgentAssignments.ByTag).To(BeEmpty())
		Expect(seg.AgentAssignments.ByID).To(Equal([]models.AgentAssignmentDetails{
			{AgentID: "agent-1", ID: "agent-1"},
			{AgentID: "agent-2", ID: "agent-2"},
		}))
	})

	// Given an IP with no registered agent
	// When agents are assigned
	// Then it is dropped silently
	It("should drop unknown IPs", func() {
		Expect(engine.Assign(ctx, session, models.AgentMap{
			"PAN-VM-FW-Client": {"10.0.2.10", "192.168.1.1"},
		}, false)).To(Succeed())

		seg := session.Config.NetworkProfiles[0].IPNetworkSegments[0]
		Expect(seg.AgentAssignments.ByID).To(HaveLen(1))
		Expect(seg.AgentAssignments.ByID[0].AgentID).To(Equal("agent-1"))
	})

	It("should replace existing assignments when not augmenting", func() {
		Expect(engine.Assign(ctx, session, models.AgentMap{
			"PAN-VM-FW-Server": {"10.0.3.10"},
		}, false)).To(Succeed())

		seg := session.Config.NetworkProfiles[0].IPNetworkSegments[1]
		Expect(seg.AgentAssignments.ByID).To(Equal([]models.AgentAssignmentDetails{models.NewAgentAssignmentDetails("agent-3")}))
		Expect(seg.AgentAssignments.ByTag).To(Equal([]string{"server"}))
	})

	// Given a segment with an existing assignment
	// When agents are assigned with augment
	// Then the result is a superset of the previous assignment
	It("should append to existing assignments when augmenting", func() {
		Expect(engine.Assign(ctx, session, models.AgentMap{
			"PAN-VM-FW-Server": {"10.0.3.10"},
		}, true)).To(Succeed())

		seg := session.Config.NetworkProfiles[0].IPNetworkSegments[1]
		Expect(seg.AgentAssignments.ByID).To(Equal([]models.AgentAssignmentDetails{
			models.NewAgentAssignmentDetails("agent-0"),
			models.NewAgentAssignmentDetails("agent-3"),
		}))
	})

	// Given a map naming two of three segments
	// When agents are assigned
	// Then only those two are sent and the third is unchanged
	It("should send one update per mapped segment only", func() {
		before := session.Config.NetworkProfiles[0].IPNetworkSegments[2]

		Expect(engine.Assign(ctx, session, models.AgentMap{
			"PAN-VM-FW-Client": {"10.0.2.10"},
			"PAN-VM-FW-Server": {"10.0.3.10"},
			"Not-In-Session":   {"10.0.2.11"},
		}, false)).To(Succeed())

		updates := fake.Updates()
		Expect(updates).To(HaveLen(2))
		for _, u := range updates {
			Expect(u.SessionID).To(Equal("session-1"))
			Expect(u.ProfileID).To(Equal("1"))
			Expect(u.Segment.Name).NotTo(Equal("Untouched"))
		}
		Expect(session.Config.NetworkProfiles[0].IPNetworkSegments[2]).To(Equal(before))
	})

	// Given a session without its configuration document
	// When agents are assigned
	// Then the document is fetched first
	It("should fetch the session configuration when missing", func() {
		fake.SessionConfigs["session-1"] = session.Config
		session.Config = nil

		Expect(engine.Assign(ctx, session, models.AgentMap{
			"PAN-VM-FW-Client": {"10.0.2.10"},
		}, false)).To(Succeed())

		Expect(fake.CountCalls("GetSessionConfig:session-1")).To(Equal(1))
		Expect(session.Config).NotTo(BeNil())
		Expect(fake.Updates()).To(HaveLen(1))
	})

	It("should list agents only once", func() {
		Expect(engine.Load(ctx)).To(Succeed())
		Expect(engine.Assign(ctx, session, models.AgentMap{"PAN-VM-FW-Client": {"10.0.2.10"}}, false)).To(Succeed())
		Expect(engine.Assign(ctx, session, models.AgentMap{"PAN-VM-FW-Client": {"10.0.2.11"}}, true)).To(Succeed())

		Expect(fake.CountCalls("ListAgents")).To(Equal(1))
		Expect(engine.Agents()).To(HaveLen(3))
	})
})
