// Package domain contains the core business entities for PharmaGuard:
// ingested drug labels, their chunked passages, and the evidence-bearing
// answer and comparison results built from them. It has no dependencies on
// adapters or infrastructure.
package domain
