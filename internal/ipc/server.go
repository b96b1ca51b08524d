package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"convoy/internal/api"
	"convoy/internal/daemon"
	"convoy/internal/logging"
	"convoy/internal/logs"
	"convoy/internal/queue"
)

// serviceName is the RPC namespace shared by server and client.
const serviceName = "Convoy"

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path, cleaning a
// stale socket first.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	handler := &service{daemon: d, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName(serviceName, handler); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve accepts RPC connections until the context is canceled, one
// goroutine per connection.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun convoy daemon stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.logger.Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.Converting = status.Converting
	resp.PID = status.PID
	resp.QueueDBPath = status.QueueDBPath
	resp.SocketPath = status.SocketPath
	resp.LockPath = status.LockFilePath
	resp.QueueStats = api.MergeQueueStats(status.QueueStats)
	resp.PresetCount = status.PresetCount
	return nil
}

func (s *service) AddFile(req AddFileRequest, resp *AddFileResponse) error {
	id, duplicate, err := s.daemon.AddFile(s.ctx, req.InputPath, req.PresetName)
	if err != nil {
		return err
	}
	resp.JobID = id
	resp.Duplicate = duplicate
	if duplicate {
		s.logger.Info("duplicate input ignored", logging.String("input", req.InputPath))
	} else {
		s.logger.Info("file queued via IPC",
			logging.String(logging.FieldJobID, id),
			logging.String("input", req.InputPath))
	}
	return nil
}

func (s *service) AddBatch(req AddBatchRequest, resp *AddBatchResponse) error {
	ids, err := s.daemon.AddBatch(s.ctx, req.InputPaths, req.PresetName)
	if err != nil {
		return err
	}
	resp.JobIDs = ids
	s.logger.Info("batch queued via IPC", logging.Int("count", len(ids)))
	return nil
}

func (s *service) QueueList(req QueueListRequest, resp *QueueListResponse) error {
	statuses := make([]queue.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := queue.ParseStatus(status)
		if !ok {
			return fmt.Errorf("unknown status %q", status)
		}
		statuses = append(statuses, parsed)
	}
	jobs, err := s.daemon.ListQueue(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Jobs = api.FromJobs(jobs)
	return nil
}

func (s *service) QueueDescribe(req QueueDescribeRequest, resp *QueueDescribeResponse) error {
	if req.ID == "" {
		return errors.New("job id is required")
	}
	job, err := s.daemon.GetJob(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	return nil
}

func (s *service) QueueClear(_ QueueClearRequest, resp *QueueClearResponse) error {
	removed, err := s.daemon.ClearQueue(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.logger.Info("queue cleared", logging.Int64("removed_count", removed))
	return nil
}

func (s *service) QueueClearCompleted(_ QueueClearCompletedRequest, resp *QueueClearCompletedResponse) error {
	removed, err := s.daemon.ClearCompleted(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) QueueClearFailed(_ QueueClearFailedRequest, resp *QueueClearFailedResponse) error {
	removed, err := s.daemon.ClearFailed(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) QueueCancel(req QueueCancelRequest, resp *QueueCancelResponse) error {
	if req.ID == "" {
		return errors.New("job id is required")
	}
	if err := s.daemon.CancelJob(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Cancelled = true
	s.logger.Info("job cancelled via IPC", logging.String(logging.FieldJobID, req.ID))
	return nil
}

func (s *service) QueueReset(_ QueueResetRequest, resp *QueueResetResponse) error {
	updated, err := s.daemon.ResetStuck(s.ctx)
	if err != nil {
		return err
	}
	resp.Updated = updated
	return nil
}

func (s *service) History(_ HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.daemon.History(s.ctx)
	if err != nil {
		return err
	}
	resp.Entries = api.FromHistoryEntries(entries)
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	removed, err := s.daemon.ClearHistory(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) Presets(_ PresetsRequest, resp *PresetsResponse) error {
	list, err := s.daemon.Presets(s.ctx)
	if err != nil {
		return err
	}
	resp.Presets = make([]PresetView, 0, len(list))
	for i, preset := range list {
		isDefault := i == 1 || (len(list) == 1 && i == 0)
		resp.Presets = append(resp.Presets, api.FromPreset(preset, isDefault))
	}
	return nil
}

func (s *service) SettingsGet(_ SettingsGetRequest, resp *SettingsGetResponse) error {
	resp.Settings = api.FromSettings(s.daemon.Settings())
	return nil
}

func (s *service) SettingsSet(req SettingsSetRequest, resp *SettingsSetResponse) error {
	if err := s.daemon.ApplySetting(req.Key, req.Value); err != nil {
		return err
	}
	resp.Settings = api.FromSettings(s.daemon.Settings())
	return nil
}

func (s *service) TemplateRender(req TemplateRenderRequest, resp *TemplateRenderResponse) error {
	if req.InputPath == "" {
		return errors.New("input path is required")
	}
	path, valid := s.daemon.RenderTemplate(req.Template, req.InputPath, req.Index, req.BatchSize)
	resp.Path = path
	resp.Valid = valid
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
