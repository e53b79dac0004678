package vectordb

// Float32s narrows a float64 vector for engines that store float32
// (chromem, Milvus).
func Float32s(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(val)
	}
	return out
}

// Float64s widens an engine-native float32 vector back to the interface
// type.
func Float64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, val := range v {
		out[i] = float64(val)
	}
	return out
}
