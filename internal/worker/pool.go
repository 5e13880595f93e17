package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"videosearch-backend/internal/models"
	"videosearch-backend/internal/repository"
	"videosearch-backend/internal/services"
	"videosearch-backend/internal/websocket"
)

// IngestQueue is the redis list batch ingest jobs are pushed onto.
const IngestQueue = "queue:transcript-ingest"

type Pool struct {
	redis       *redis.Client
	ingest      *services.IngestService
	jobRepo     *repository.JobRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	ingest *services.IngestService,
	jobRepo *repository.JobRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		ingest:      ingest,
		jobRepo:     jobRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

// Enqueue creates the job record and pushes it onto the ingest queue.
func (p *Pool) Enqueue(ctx context.Context, job *models.Job) error {
	if err := p.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create job record: %w", err)
	}

	jobBytes, _ := json.Marshal(job)
	if err := p.redis.LPush(ctx, IngestQueue, string(jobBytes)).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, IngestQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Only one worker may process a job
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)
		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		if err := p.processIngest(ctx, &job); err != nil {
			p.handleFailure(ctx, &job, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processIngest(ctx context.Context, job *models.Job) error {
	var config models.IngestJobConfig
	if err := json.Unmarshal(job.ConfigJSON, &config); err != nil {
		return fmt.Errorf("bad job config: %w", err)
	}
	if len(config.Paths) == 0 {
		return fmt.Errorf("ingest job has no files")
	}

	videos, failed := p.ingest.IngestBatch(ctx, config.Paths, func(done, total int, current string) {
		p.jobRepo.UpdateProgress(ctx, job.ID, done, total)
		p.publish(ctx, models.WSMessage{
			Type: "ingest_progress",
			Payload: models.IngestProgress{
				JobID:       job.ID,
				Processed:   done,
				Total:       total,
				CurrentFile: current,
			},
		})
	})

	if len(videos) == 0 {
		return fmt.Errorf("all %d files failed to ingest", failed)
	}

	videoIDs := make([]string, len(videos))
	for i, v := range videos {
		videoIDs[i] = v.ID
	}

	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")
	p.publish(ctx, models.WSMessage{
		Type: "ingest_completed",
		Payload: models.IngestCompleted{
			JobID:    job.ID,
			Ingested: len(videos),
			Failed:   failed,
			VideoIDs: videoIDs,
		},
	})

	log.Printf("Job %s completed: %d ingested, %d failed", job.ID, len(videos), failed)
	return nil
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	errMsg := err.Error()
	log.Printf("Job %s failed: %s", job.ID, errMsg)

	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.jobRepo.UpdateError(ctx, job.ID, errMsg)

	p.publish(ctx, models.WSMessage{
		Type: "ingest_failed",
		Payload: models.IngestFailed{
			JobID:        job.ID,
			ErrorMessage: errMsg,
		},
	})
}

func (p *Pool) publish(ctx context.Context, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	p.redis.Publish(ctx, websocket.EngineChannel, string(data))
}
