package calculator

// Calculation is a validated request for one binary operation.
type Calculation struct {
	Operand1  float64
	Operand2  float64
	Operation Operation
}

// Result is the JSON response for a successful calculation.
type Result struct {
	Result float64 `json:"result"`
}

// CalculateRequest is the JSON body for POST /calculate. Pointer fields
// distinguish missing values from zero.
type CalculateRequest struct {
	Operand1  *float64 `json:"operand1"`
	Operand2  *float64 `json:"operand2"`
	Operation *string  `json:"operation"`
}
