package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/finadvisor/orchestrator/common/httpx"
	"github.com/finadvisor/orchestrator/common/logger"
	"github.com/finadvisor/orchestrator/config"
	"github.com/finadvisor/orchestrator/metrics"
	"github.com/finadvisor/orchestrator/prompt"
	"github.com/finadvisor/orchestrator/schema"
)

// Classifier decides the intent of a user message.
type Classifier interface {
	Classify(ctx context.Context, question string) schema.IntentLabel
}

// Answerer produces an answer for a knowledge-base question.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Orchestrator routes a classified request to its handler: an
// in-process refusal, the local answering pipeline, or a downstream
// assistant service over HTTP.
type Orchestrator struct {
	classifier Classifier
	answerer   Answerer
	endpoints  map[schema.IntentLabel]string
	client     *httpx.Client
}

// New builds an orchestrator from configuration.
func New(classifier Classifier, answerer Answerer, routes config.RoutesConfig, httpCfg *config.HTTPClientConfig) *Orchestrator {
	endpoints := make(map[schema.IntentLabel]string, 3)
	if routes.AnalyzePDF != "" {
		endpoints[schema.IntentAnalyzePDF] = routes.AnalyzePDF
	}
	if routes.ShoppingAdvisor != "" {
		endpoints[schema.IntentShoppingAdvisor] = routes.ShoppingAdvisor
	}
	if routes.ChatRAG != "" {
		endpoints[schema.IntentChatRAG] = routes.ChatRAG
	}
	return &Orchestrator{
		classifier: classifier,
		answerer:   answerer,
		endpoints:  endpoints,
		client:     httpx.NewFromConfig(httpCfg),
	}
}

// Handle runs one request end to end. It always returns an envelope;
// failures are folded into it rather than surfaced as errors.
func (o *Orchestrator) Handle(ctx context.Context, query, document string) schema.ServiceResponseEnvelope {
	start := time.Now()
	label := o.classifier.Classify(ctx, query)
	defer metrics.ObserveRequest(label.String(), start)
	logger.Infof("router: intent=%s", label)

	switch label {
	case schema.IntentToxic:
		// refused requests never reach retrieval, generation or a
		// downstream service
		return schema.ServiceResponseEnvelope{OK: true, Payload: prompt.RefusalText}
	case schema.IntentChatRAG:
		if endpoint, ok := o.endpoints[schema.IntentChatRAG]; ok {
			return o.invokeRemote(ctx, label, endpoint, query, document)
		}
		return o.answerLocal(ctx, query)
	case schema.IntentAnalyzePDF, schema.IntentShoppingAdvisor:
		endpoint, ok := o.endpoints[label]
		if !ok {
			logger.Errorf("router: no endpoint configured for intent %s", label)
			return schema.ServiceResponseEnvelope{OK: false, ErrorMessage: "service unavailable"}
		}
		return o.invokeRemote(ctx, label, endpoint, query, document)
	default:
		logger.Errorf("router: unrecognized intent %d", label)
		return schema.ServiceResponseEnvelope{OK: false, ErrorMessage: "unrecognized intent"}
	}
}

func (o *Orchestrator) answerLocal(ctx context.Context, query string) schema.ServiceResponseEnvelope {
	answer, err := o.answerer.Answer(ctx, query)
	if err != nil {
		logger.Errorf("router: local answering failed: %v", err)
		return schema.ServiceResponseEnvelope{OK: false, ErrorMessage: "answer generation failed"}
	}
	return schema.ServiceResponseEnvelope{OK: true, Payload: answer}
}

// invokeRemote posts the request envelope to a downstream assistant.
// Non-2xx responses keep their status code; transport failures carry a
// short description and no status code.
func (o *Orchestrator) invokeRemote(ctx context.Context, label schema.IntentLabel, endpoint, query, document string) schema.ServiceResponseEnvelope {
	body, err := json.Marshal(schema.ServiceRequestEnvelope{Query: query, Document: document})
	if err != nil {
		logger.Errorf("router: encode request for %s failed: %v", label, err)
		return schema.ServiceResponseEnvelope{OK: false, ErrorMessage: "downstream request could not be built"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		logger.Errorf("router: build request for %s failed: %v", label, err)
		return schema.ServiceResponseEnvelope{OK: false, ErrorMessage: "downstream request could not be built"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil || resp == nil {
		logger.Errorf("router: call to %s service failed: %v", label, err)
		metrics.IncDownstream(label.String(), "transport_error")
		return schema.ServiceResponseEnvelope{OK: false, ErrorMessage: "downstream service unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnf("router: %s service returned status %d", label, resp.StatusCode)
		metrics.IncDownstream(label.String(), "http_error")
		return schema.ServiceResponseEnvelope{
			OK:           false,
			ErrorMessage: "downstream service error",
			StatusCode:   resp.StatusCode,
		}
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Errorf("router: decode %s response failed: %v", label, err)
		metrics.IncDownstream(label.String(), "decode_error")
		return schema.ServiceResponseEnvelope{OK: false, ErrorMessage: "downstream service returned an unreadable response"}
	}
	metrics.IncDownstream(label.String(), "ok")
	return schema.ServiceResponseEnvelope{OK: true, Payload: payload}
}
