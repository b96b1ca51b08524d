package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) call(method string, req, resp any) error {
	return c.client.Call(serviceName+"."+method, req, resp)
}

// Ping checks daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.call("Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Start requests the daemon to start processing.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.call("Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.call("Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call("Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddFile enqueues a single input file.
func (c *Client) AddFile(inputPath, presetName string) (*AddFileResponse, error) {
	var resp AddFileResponse
	req := AddFileRequest{InputPath: inputPath, PresetName: presetName}
	if err := c.call("AddFile", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddBatch enqueues inputs as one numbered batch.
func (c *Client) AddBatch(inputPaths []string, presetName string) (*AddBatchResponse, error) {
	var resp AddBatchResponse
	req := AddBatchRequest{InputPaths: inputPaths, PresetName: presetName}
	if err := c.call("AddBatch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueList returns jobs optionally filtered by statuses.
func (c *Client) QueueList(statuses []string) (*QueueListResponse, error) {
	var resp QueueListResponse
	if err := c.call("QueueList", QueueListRequest{Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueDescribe returns details for a single job.
func (c *Client) QueueDescribe(id string) (*QueueDescribeResponse, error) {
	var resp QueueDescribeResponse
	if err := c.call("QueueDescribe", QueueDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClear removes all jobs.
func (c *Client) QueueClear() (*QueueClearResponse, error) {
	var resp QueueClearResponse
	if err := c.call("QueueClear", QueueClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClearCompleted removes completed jobs.
func (c *Client) QueueClearCompleted() (*QueueClearCompletedResponse, error) {
	var resp QueueClearCompletedResponse
	if err := c.call("QueueClearCompleted", QueueClearCompletedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClearFailed removes failed jobs.
func (c *Client) QueueClearFailed() (*QueueClearFailedResponse, error) {
	var resp QueueClearFailedResponse
	if err := c.call("QueueClearFailed", QueueClearFailedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueCancel stops one job.
func (c *Client) QueueCancel(id string) (*QueueCancelResponse, error) {
	var resp QueueCancelResponse
	if err := c.call("QueueCancel", QueueCancelRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueReset requeues jobs left in flight by an unclean shutdown.
func (c *Client) QueueReset() (*QueueResetResponse, error) {
	var resp QueueResetResponse
	if err := c.call("QueueReset", QueueResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns recorded conversions.
func (c *Client) History() (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.call("History", HistoryRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryClear removes all history entries.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	var resp HistoryClearResponse
	if err := c.call("HistoryClear", HistoryClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Presets returns the loaded catalog.
func (c *Client) Presets() (*PresetsResponse, error) {
	var resp PresetsResponse
	if err := c.call("Presets", PresetsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SettingsGet fetches the persisted naming settings.
func (c *Client) SettingsGet() (*SettingsGetResponse, error) {
	var resp SettingsGetResponse
	if err := c.call("SettingsGet", SettingsGetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SettingsSet updates one naming setting by key.
func (c *Client) SettingsSet(key, value string) (*SettingsSetResponse, error) {
	var resp SettingsSetResponse
	if err := c.call("SettingsSet", SettingsSetRequest{Key: key, Value: value}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TemplateRender previews a naming template against a sample input.
func (c *Client) TemplateRender(req TemplateRenderRequest) (*TemplateRenderResponse, error) {
	var resp TemplateRenderResponse
	if err := c.call("TemplateRender", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.call("TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.call("LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
