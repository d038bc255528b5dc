package planner

// score rates a candidate for the greedy step; lower is better. The
// weights are empirical and differ per mode: least_travel punishes
// commute hardest, best_timing punishes dead waiting, and most_mics
// adds a small bias toward earlier events so more stops fit later.
func score(p Priority, travelMins, arrivalMins, startMins, planningStartMins int) float64 {
	late := float64(max(0, arrivalMins-startMins))
	wait := float64(max(0, startMins-arrivalMins))
	sinceStart := float64(max(0, startMins-planningStartMins))
	travel := float64(travelMins)

	switch p {
	case PriorityLeastTravel:
		return travel*3 + wait*1 + late*8
	case PriorityBestTiming:
		return travel*1.25 + wait*3 + late*10
	default:
		return travel*1.5 + wait*1 + late*10 + sinceStart*0.05
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
