package proc

import "github.com/prometheus/procfs"

func ReadLoadavg(fs procfs.FS) ([3]float64, error) {
	la, err := fs.LoadAvg()
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{la.Load1, la.Load5, la.Load15}, nil
}
