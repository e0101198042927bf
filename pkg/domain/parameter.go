package domain

// Parameter describes one user parameter of the active design.
type Parameter struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Expression string  `json:"expression"`
	Comment    string  `json:"comment"`
}
