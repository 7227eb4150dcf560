package clients

import (
	"context"
	"fmt"

	ws "dails-report/internal/transport/websocket"
)

// WebSocketClient pushes export notifications to subscribers of a declaration.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func (c *WebSocketClient) NotifyExportProgress(
	ctx context.Context,
	declarationID int64,
	exportID string,
	progress float64,
	stage string,
) error {
	if c.hub == nil {
		return nil
	}

	data := map[string]any{
		"id":       exportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	c.hub.Broadcast(declarationID, &ws.Message{
		Type:    "export_progress",
		Channel: fmt.Sprintf("declaration_export_progress#%d", declarationID),
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyExportComplete(
	ctx context.Context,
	declarationID int64,
	exportID string,
	url string,
	filename string,
) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(declarationID, &ws.Message{
		Type:    "export_complete",
		Channel: fmt.Sprintf("declaration_export_complete#%d", declarationID),
		Data: map[string]any{
			"id":             exportID,
			"url":            url,
			"filename":       filename,
			"declaration_id": declarationID,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, declarationID int64, exportID string, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	c.hub.Broadcast(declarationID, &ws.Message{
		Type:    "export_failed",
		Channel: fmt.Sprintf("declaration_export_failed#%d", declarationID),
		Data: map[string]any{
			"id":             exportID,
			"message":        errMsg,
			"declaration_id": declarationID,
		},
	})
	return nil
}
