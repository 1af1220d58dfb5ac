package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

const pipelineURI = "hybrid-ai://pipeline"

type phaseInfo struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Label  string `json:"label"`
	Role   string `json:"role"`
}

type pipelineResponse struct {
	ServerVersion string      `json:"server_version"`
	Phases        []phaseInfo `json:"phases"`
}

// registerPipelineResource publishes the collaborative phase table so clients
// can interpret failed_phase and the report sections.
func (s *Server) registerPipelineResource() {
	s.mcpServer.Resource(pipelineURI).
		Name(pipelineURI).
		Description("Collaborative pipeline phases in execution order").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			resp := pipelineResponse{ServerVersion: Version}
			for _, p := range workflow.Phases() {
				resp.Phases = append(resp.Phases, phaseInfo{
					Number: p.Number(),
					Name:   p.String(),
					Title:  p.Title(),
					Label:  p.ReportLabel(),
					Role:   p.Role().String(),
				})
			}
			data, err := json.Marshal(resp)
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      pipelineURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}
