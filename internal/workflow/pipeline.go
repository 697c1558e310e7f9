package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vovarama1992/dreamcatcher/internal/ai"
	"github.com/Vovarama1992/dreamcatcher/internal/notificator"
	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

type Step string

const (
	StepUpload     Step = "upload"
	StepTranscribe Step = "transcribe"
	StepInterpret  Step = "interpret"
	StepInsert     Step = "insert"
)

// StepError: первая упавшая стадия; остальные не запускались
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// Result: типизированный результат каждой стадии
type Result struct {
	ObjectKey      string
	AudioURL       string
	Transcription  string
	Interpretation string
	Record         *ports.DreamRecord
}

type Pipeline struct {
	storage     ports.S3Service
	transcriber ai.Transcriber
	interpreter ai.Service
	dreams      ports.DreamService
	notifier    notificator.Notificator
	log         *zap.Logger
	now         func() time.Time
}

func NewPipeline(
	storage ports.S3Service,
	transcriber ai.Transcriber,
	interpreter ai.Service,
	dreams ports.DreamService,
	notifier notificator.Notificator,
	log *zap.Logger,
) *Pipeline {
	return &Pipeline{
		storage:     storage,
		transcriber: transcriber,
		interpreter: interpreter,
		dreams:      dreams,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

type run struct {
	ownerID string
	blob    []byte
	res     Result
}

type stage struct {
	name Step
	fn   func(ctx context.Context, r *run) error
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{StepUpload, p.upload},
		{StepTranscribe, p.transcribe},
		{StepInterpret, p.interpret},
		{StepInsert, p.insert},
	}
}

// Run выполняет стадии строго по порядку и останавливается на первой ошибке.
// Загруженный объект при поздней ошибке не откатывается.
func (p *Pipeline) Run(ctx context.Context, ownerID string, blob []byte) (*Result, error) {
	if len(blob) == 0 {
		return nil, &StepError{Step: StepUpload, Err: fmt.Errorf("empty audio")}
	}

	r := &run{ownerID: ownerID, blob: blob}
	log := p.log.With(zap.String("owner", ownerID))
	start := time.Now()
	log.Info("upload dream: start", zap.String("size", humanize.Bytes(uint64(len(blob)))))

	for _, st := range p.stages() {
		if err := st.fn(ctx, r); err != nil {
			log.Warn("upload dream: step failed", zap.String("step", string(st.name)), zap.Error(err))
			if r.res.ObjectKey != "" {
				log.Warn("upload dream: orphaned audio object", zap.String("key", r.res.ObjectKey))
			}
			_ = p.notifier.Notify(ctx, err, fmt.Sprintf("upload dream: step=%s owner=%s key=%s", st.name, ownerID, r.res.ObjectKey))
			return &r.res, &StepError{Step: st.name, Err: err}
		}
	}

	log.Info("upload dream: done",
		zap.Int64("dream_id", r.res.Record.ID),
		zap.Duration("took", time.Since(start)),
	)
	return &r.res, nil
}

func (p *Pipeline) upload(ctx context.Context, r *run) error {
	key := p.storage.ObjectKey(r.ownerID, p.now())
	url, err := p.storage.SaveAudio(ctx, key, r.blob)
	if err != nil {
		return err
	}
	r.res.ObjectKey = key
	r.res.AudioURL = url
	return nil
}

func (p *Pipeline) transcribe(ctx context.Context, r *run) error {
	text, err := p.transcriber.Transcribe(ctx, r.blob)
	if err != nil {
		return err
	}
	r.res.Transcription = text
	return nil
}

func (p *Pipeline) interpret(ctx context.Context, r *run) error {
	text, err := p.interpreter.Interpret(ctx, r.res.Transcription)
	if err != nil {
		return err
	}
	r.res.Interpretation = text
	return nil
}

func (p *Pipeline) insert(ctx context.Context, r *run) error {
	rec, err := p.dreams.Add(ctx, ports.NewDream{
		OwnerID:        r.ownerID,
		AudioURL:       r.res.AudioURL,
		Transcription:  r.res.Transcription,
		Interpretation: r.res.Interpretation,
	})
	if err != nil {
		return err
	}
	r.res.Record = rec
	return nil
}
