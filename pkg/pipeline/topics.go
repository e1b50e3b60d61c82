/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: topics.go
Description: Parallel topic processing for StreamSchema. Fans a sorted topic list out
over a bounded worker pool, runs the full inference chain per topic, optionally
publishes the generated schema, and returns results in deterministic topic order.
*/

package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kleascm/streamschema/pkg/config"
	"github.com/kleascm/streamschema/pkg/interfaces"
	"github.com/kleascm/streamschema/pkg/schema"
)

// TopicResult is the outcome of one topic's pipeline run
type TopicResult struct {
	// ID uniquely identifies this run for log correlation
	ID uuid.UUID

	// Topic is the processed topic name
	Topic string

	// Schema is the inferred schema; nil when Err is set
	Schema *schema.InferredSchema

	// SchemaText is the generated schema in the requested target format
	SchemaText string

	// Extension is the conventional file extension for SchemaText
	Extension string

	// Metadata describes detection and parsing for the sample
	Metadata *Metadata

	// Version is the registry-assigned version when publication ran
	Version int

	// Err carries the first failure in the chain; nil on success
	Err error

	// Duration is the wall time of the whole run
	Duration time.Duration

	// MessageCount is how many messages were sampled
	MessageCount int
}

// ProcessTopics runs the pipeline over every topic in parallel. An empty topic
// list is resolved from the source. A nil registry skips publication. Results
// are returned sorted by topic name regardless of completion order.
func (p *Pipeline) ProcessTopics(ctx context.Context, source interfaces.MessageSource, registry interfaces.SchemaRegistry, topics []string, schemaFormat string, perf config.PerformanceConfig) ([]TopicResult, error) {
	if len(topics) == 0 {
		var err error
		topics, err = source.Topics(ctx)
		if err != nil {
			return nil, err
		}
	}
	topics = append([]string(nil), topics...)
	sort.Strings(topics)

	workers := perf.MaxWorkers
	if workers <= 0 || workers > len(topics) {
		workers = len(topics)
	}

	p.logger.WithFields(logrus.Fields{
		"topics":  len(topics),
		"workers": workers,
	}).Info("Starting topic processing")

	topicChan := make(chan string, len(topics))
	resultChan := make(chan TopicResult, len(topics))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for topic := range topicChan {
				select {
				case <-ctx.Done():
					resultChan <- TopicResult{ID: uuid.New(), Topic: topic, Err: ctx.Err()}
					continue
				default:
				}
				p.logger.WithFields(logrus.Fields{
					"worker": workerID,
					"topic":  topic,
				}).Debug("Worker picked up topic")
				resultChan <- p.processTopic(ctx, source, registry, topic, schemaFormat)
			}
		}(i)
	}

	for _, topic := range topics {
		topicChan <- topic
	}
	close(topicChan)

	wg.Wait()
	close(resultChan)

	results := make([]TopicResult, 0, len(topics))
	for result := range resultChan {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Topic < results[j].Topic
	})

	return results, nil
}

// processTopic runs the full chain for one topic
func (p *Pipeline) processTopic(ctx context.Context, source interfaces.MessageSource, registry interfaces.SchemaRegistry, topic string, schemaFormat string) TopicResult {
	start := time.Now()
	result := TopicResult{
		ID:    uuid.New(),
		Topic: topic,
	}

	messages, err := source.Sample(ctx, topic, p.cfg.SampleSize)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.MessageCount = len(messages)

	inferred, meta, err := p.InferSchema(messages, topic)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Schema = inferred
	result.Metadata = meta

	text, extension, err := Generate(inferred, schemaFormat)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.SchemaText = text
	result.Extension = extension

	p.logger.WithFields(logrus.Fields{
		"topic":         topic,
		"schema_format": schemaFormat,
		"size":          len(text),
	}).Info("Schema generated")

	if registry != nil {
		subject := interfaces.SubjectFor(topic)
		version, err := registry.Register(ctx, subject, text, schemaFormat)
		if err != nil {
			result.Err = err
			result.Duration = time.Since(start)
			return result
		}
		result.Version = version
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"version": version,
		}).Info("Schema published")
	}

	result.Duration = time.Since(start)
	p.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"duration": result.Duration,
		"fields":   len(inferred.Fields),
	}).Info("Topic processed")

	return result
}
