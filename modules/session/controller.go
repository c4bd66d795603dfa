package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"veo-studio-server/modules/common/model"
	"veo-studio-server/modules/sample"
)

var (
	ErrInvalidRequest     = errors.New("invalid generation request")
	ErrGenerationInFlight = errors.New("a generation is already in progress")
	ErrCannotExtend       = errors.New("only a successful generation can be extended")
	ErrSampleUnavailable  = errors.New("sample is not available")
	ErrSessionClosed      = errors.New("session is closed")
)

// Generator - 원격 생성 서비스
type Generator interface {
	Generate(ctx context.Context, sessionID string, req *model.GenerationRequest) (*model.GenerationResult, error)
}

// CredentialGate - API 키 선택 여부 확인 / 선택 UI
type CredentialGate interface {
	HasSelectedCredential(ctx context.Context, sessionID string) (bool, error)
	OpenCredentialSelection(ctx context.Context, sessionID string) error
}

// URLReleaser - 더 이상 표시하지 않는 재생 URL 해제
type URLReleaser interface {
	Release(url string)
}

// SampleLoader - 원클릭 샘플 에셋
type SampleLoader interface {
	Load(ctx context.Context) (*sample.Asset, error)
}

// Snapshot - 특정 시점의 세션 상태와 화면
type Snapshot struct {
	SessionID       string `json:"sessionId"`
	State           State  `json:"state"`
	View            View   `json:"view"`
	SampleAvailable bool   `json:"sampleAvailable"`
}

// Options - 컨트롤러 협력 객체
type Options struct {
	Generator Generator
	Gate      CredentialGate
	Releaser  URLReleaser
	Samples   SampleLoader
	OnChange  func(Snapshot)
}

// Controller - 세션 하나의 생성 상태 머신
// 모든 상태 변경은 mu 아래에서 전이 함수로만 이루어지고, 변경 후 OnChange로 전달된다.
type Controller struct {
	id   string
	opts Options

	mu           sync.Mutex
	state        State
	sample       *sample.Asset
	closed       bool
	createdAt    time.Time
	lastActivity time.Time

	emitMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController - 컨트롤러 생성 (Start 호출 전까지 비동기 작업 없음)
func NewController(id string, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	return &Controller{
		id:           id,
		opts:         opts,
		state:        NewState(),
		createdAt:    now,
		lastActivity: now,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ID - 세션 ID
func (c *Controller) ID() string {
	return c.id
}

// Start - 키 확인과 샘플 로드를 비동기로 시작
func (c *Controller) Start() {
	c.CheckCredential()

	if c.opts.Samples == nil {
		return
	}
	c.spawn(func(ctx context.Context) {
		asset, err := c.opts.Samples.Load(ctx)
		if err != nil {
			// 샘플이 없으면 샘플 버튼만 빠짐
			log.Printf("⚠️  [Session %s] Sample asset unavailable: %v", c.id, err)
			return
		}
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.sample = asset
		c.mu.Unlock()
		c.emit()
	})
}

// Submit - 요청 제출 (InProgress 중이면 거부)
func (c *Controller) Submit(req *model.GenerationRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req = req.Clone()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if c.state.Phase == PhaseInProgress {
		c.mu.Unlock()
		return ErrGenerationInFlight
	}
	previousURL := playableURL(c.state)
	c.state = c.state.BeginSubmit(req)
	token := c.state.Submission
	c.lastActivity = time.Now()
	c.mu.Unlock()

	c.release(previousURL)
	c.emit()
	recordGenerationStarted()
	log.Printf("🎬 [Session %s] Submission #%d started (%s)", c.id, token, req.Mode)

	c.spawn(func(ctx context.Context) {
		c.runGeneration(ctx, token, req)
	})
	return nil
}

func (c *Controller) runGeneration(ctx context.Context, token uint64, req *model.GenerationRequest) {
	result, err := c.opts.Generator.Generate(ctx, c.id, req)

	c.mu.Lock()
	if c.closed || c.state.Submission != token || c.state.Phase != PhaseInProgress {
		c.mu.Unlock()
		log.Printf("⚠️  [Session %s] Ignoring stale resolution of submission #%d", c.id, token)
		if result != nil {
			c.release(result.PlayableURL)
		}
		return
	}

	if err != nil {
		classification := ClassifyGenerationError(err)
		c.state = c.state.Fail(classification.Message)
		c.mu.Unlock()

		log.Printf("❌ [Session %s] Submission #%d failed (%s): %v", c.id, token, classification.Kind, err)
		recordGenerationFailed(classification.Kind)
		c.emit()

		if classification.Kind == KindCredential {
			c.CheckCredential()
		}
		return
	}

	c.state = c.state.Succeed(result)
	c.mu.Unlock()

	log.Printf("✅ [Session %s] Submission #%d succeeded", c.id, token)
	recordGenerationSucceeded()
	c.emit()
}

// Retry - 직전 요청 그대로 재제출 (직전 요청이 없으면 아무것도 안 함)
func (c *Controller) Retry() error {
	c.mu.Lock()
	last := c.state.LastRequest
	c.mu.Unlock()

	if last == nil {
		return nil
	}
	return c.Submit(last)
}

// NewVideo - Idle로 초기화
func (c *Controller) NewVideo() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if c.state.Phase == PhaseInProgress {
		c.mu.Unlock()
		return ErrGenerationInFlight
	}
	previousURL := playableURL(c.state)
	c.state = c.state.Reset()
	c.lastActivity = time.Now()
	c.mu.Unlock()

	c.release(previousURL)
	c.emit()
	return nil
}

// Extend - 성공 결과로부터 확장 요청을 만들어 입력 화면으로
func (c *Controller) Extend() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	next, ok := c.state.Extend()
	if !ok {
		c.mu.Unlock()
		return ErrCannotExtend
	}
	previousURL := playableURL(c.state)
	c.state = next
	c.lastActivity = time.Now()
	c.mu.Unlock()

	c.release(previousURL)
	c.emit()
	return nil
}

// SubmitSample - 원클릭 샘플 요청 제출
func (c *Controller) SubmitSample() error {
	c.mu.Lock()
	asset := c.sample
	c.mu.Unlock()

	if asset == nil {
		return ErrSampleUnavailable
	}
	return c.Submit(sample.Request(asset))
}

// ContinueFromCredentialDialog - 키 선택 UI를 열고, 끝나면 키 확인 재실행
func (c *Controller) ContinueFromCredentialDialog() error {
	c.mu.Lock()
	closed := c.closed
	c.lastActivity = time.Now()
	c.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	c.spawn(func(ctx context.Context) {
		if err := c.opts.Gate.OpenCredentialSelection(ctx, c.id); err != nil {
			log.Printf("❌ [Session %s] Error opening API key selection: %v", c.id, err)
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			previousURL := playableURL(c.state)
			c.state = c.state.CredentialDialogFailed()
			c.mu.Unlock()

			c.release(previousURL)
			c.emit()
			return
		}
		c.checkCredential(ctx)
	})
	return nil
}

// CheckCredential - 키 확인을 비동기로 실행
func (c *Controller) CheckCredential() {
	c.spawn(c.checkCredential)
}

func (c *Controller) checkCredential(ctx context.Context) {
	present, err := c.opts.Gate.HasSelectedCredential(ctx, c.id)
	if err != nil {
		// 확인 자체가 실패하면 키가 있다고 간주
		log.Printf("⚠️  [Session %s] Credential check failed, assuming key is present: %v", c.id, err)
		recordCredentialCheck("error")
		present = true
	} else if present {
		recordCredentialCheck("present")
	} else {
		recordCredentialCheck("missing")
	}
	c.apply(func(s State) State { return s.WithCredential(present) })
}

// Snapshot - 현재 상태
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// View - 현재 화면
func (c *Controller) View() View {
	return c.Snapshot().View
}

func (c *Controller) snapshotLocked() Snapshot {
	loaded := c.sample != nil
	return Snapshot{
		SessionID:       c.id,
		State:           c.state,
		View:            SelectView(c.state, loaded),
		SampleAvailable: loaded,
	}
}

// Activity - 생성 시각과 마지막 활동 시각
func (c *Controller) Activity() (createdAt, lastActivity time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createdAt, c.lastActivity
}

// Busy - 생성 진행 중 여부
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase == PhaseInProgress
}

// Close - 세션 종료: 진행 중 호출 취소, 이후 결과 무시, 재생 URL 해제
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	url := playableURL(c.state)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.release(url)
	log.Printf("🧹 [Session %s] Closed", c.id)
}

// apply - 닫히지 않았으면 전이 함수 적용 후 전달
func (c *Controller) apply(transition func(State) State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = transition(c.state)
	c.mu.Unlock()
	c.emit()
}

// emit - 최신 스냅샷 전달 (emitMu로 순서 보장: 마지막 전달이 항상 최신 상태)
func (c *Controller) emit() {
	if c.opts.OnChange == nil {
		return
	}
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.opts.OnChange(snap)
}

func (c *Controller) spawn(fn func(ctx context.Context)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

func (c *Controller) release(url string) {
	if url == "" || c.opts.Releaser == nil {
		return
	}
	c.opts.Releaser.Release(url)
}
