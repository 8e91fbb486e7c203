package generator

import "github.com/Faultbox/terranarrative/pkg/heightfield"

// ThermalErosion moves material from each interior cell to its lowest
// 8-neighbour when the drop exceeds Talus. Every iteration reads a
// snapshot of the previous one, so the result does not depend on scan
// order. Total mass is conserved.
type ThermalErosion struct {
	Iterations  int
	Talus       float32 // drops at or below this height are stable
	Rate        float32 // fraction of the excess drop moved per iteration
	MaxTransfer float32 // per-cell cap per iteration, 0 for none
}

// Apply erodes hf in place.
func (e ThermalErosion) Apply(hf *heightfield.HeightField) {
	w, h := hf.Width(), hf.Height()
	if e.Iterations <= 0 || w < 3 || h < 3 {
		return
	}

	data := hf.Data()
	snapshot := make([]float32, len(data))

	for range e.Iterations {
		copy(snapshot, data)

		for z := 1; z < h-1; z++ {
			for x := 1; x < w-1; x++ {
				i := z*w + x
				cur := snapshot[i]

				lowest := i
				maxDrop := float32(0)
				for dz := -1; dz <= 1; dz++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dz == 0 {
							continue
						}
						n := (z+dz)*w + x + dx
						if drop := cur - snapshot[n]; drop > maxDrop {
							maxDrop = drop
							lowest = n
						}
					}
				}

				if lowest == i || maxDrop <= e.Talus {
					continue
				}
				amount := (maxDrop - e.Talus) * e.Rate
				if e.MaxTransfer > 0 && amount > e.MaxTransfer {
					amount = e.MaxTransfer
				}
				data[i] -= amount
				data[lowest] += amount
			}
		}
	}
}
