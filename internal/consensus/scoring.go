package consensus

// BrierScore is the squared error between a prediction and the realized
// outcome, both given in [0,100] and scaled to [0,1] before squaring.
// 0 is a perfect forecast, 1 maximally wrong.
func BrierScore(prediction, outcome float64) float64 {
	d := prediction/100 - outcome/100
	return d * d
}
