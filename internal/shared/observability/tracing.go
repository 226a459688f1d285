package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the process-wide tracer; a no-op provider unless the host wires
// an exporter.
var Tracer trace.Tracer = otel.Tracer("docwatch")
