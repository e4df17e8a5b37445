// Package mood groups tracks by audio-feature similarity using k-means.
package mood

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/muesli/clusters"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// DefaultGroups is used when Group is called with k <= 0.
const DefaultGroups = 3

const maxIterations = 100

// Columns are the coordinates each track is clustered on.
var Columns = []string{
	domain.ColumnEnergy,
	domain.ColumnValence,
	domain.ColumnDanceability,
	domain.ColumnAcousticness,
}

// Cluster is one mood group: its member tracks and their average features.
type Cluster struct {
	TrackIDs []string           `json:"track_ids"`
	Centroid map[string]float64 `json:"centroid"`
}

// Result holds the groups plus the tracks that could not be placed because
// they have no feature vector.
type Result struct {
	Groups   []Cluster `json:"groups"`
	Outliers []string  `json:"outliers"`
}

type observation struct {
	trackID string
	coords  clusters.Coordinates
}

func (o observation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o observation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Group partitions the rows of ds into at most k mood groups. Every row ends
// up in exactly one group or in Outliers. With fewer placeable rows than k
// all of them form a single group.
//
// Grouping is reproducible: rows are ordered by track id, initial centers
// are picked farthest-first and Lloyd iterations run until no row moves.
func Group(ds domain.CleanedDataset, k int) (Result, error) {
	if k <= 0 {
		k = DefaultGroups
	}

	var res Result
	var obs clusters.Observations
	for _, r := range ds.Rows {
		if r.Features == nil {
			res.Outliers = append(res.Outliers, r.TrackID)
			continue
		}
		coords := make(clusters.Coordinates, len(Columns))
		for i, c := range Columns {
			coords[i], _ = r.Value(c)
		}
		obs = append(obs, observation{trackID: r.TrackID, coords: coords})
	}

	if len(obs) == 0 {
		return res, nil
	}
	if len(obs) < k {
		res.Groups = []Cluster{toCluster(clusters.Cluster{Observations: obs, Center: centroid(obs)})}
		return res, nil
	}

	slices.SortStableFunc(obs, func(a, b clusters.Observation) int {
		return cmp.Compare(a.(observation).trackID, b.(observation).trackID)
	})

	parts, err := partition(obs, k)
	if err != nil {
		return Result{}, fmt.Errorf("mood: partition: %w", err)
	}
	for _, p := range parts {
		if len(p.Observations) == 0 {
			continue
		}
		res.Groups = append(res.Groups, toCluster(p))
	}
	return res, nil
}

// partition runs k-means over obs, which must hold at least k entries.
func partition(obs clusters.Observations, k int) (clusters.Clusters, error) {
	centers, err := seedCenters(obs, k)
	if err != nil {
		return nil, err
	}
	cc := make(clusters.Clusters, k)
	for i := range cc {
		cc[i].Center = centers[i]
	}

	assigned := make([]int, len(obs))
	for i := range assigned {
		assigned[i] = -1
	}
	for iter := 0; iter < maxIterations; iter++ {
		cc.Reset()
		changes := 0
		for i, o := range obs {
			ci := cc.Nearest(o)
			cc[ci].Append(o)
			if assigned[i] != ci {
				assigned[i] = ci
				changes++
			}
		}
		if changes == 0 {
			break
		}
		// An empty cluster keeps its previous center.
		cc.Recenter()
	}
	return cc, nil
}

// seedCenters picks the observation closest to the overall mean, then
// repeatedly the observation farthest from every center chosen so far.
// Ties go to the earlier observation.
func seedCenters(obs clusters.Observations, k int) ([]clusters.Coordinates, error) {
	mean, err := obs.Center()
	if err != nil {
		return nil, err
	}

	first, best := 0, math.Inf(1)
	for i, o := range obs {
		if d := o.Distance(mean); d < best {
			first, best = i, d
		}
	}
	centers := []clusters.Coordinates{obs[first].Coordinates()}

	nearest := make([]float64, len(obs))
	for i, o := range obs {
		nearest[i] = o.Distance(centers[0])
	}
	for len(centers) < k {
		next, far := 0, -1.0
		for i, d := range nearest {
			if d > far {
				next, far = i, d
			}
		}
		c := obs[next].Coordinates()
		centers = append(centers, c)
		for i, o := range obs {
			nearest[i] = min(nearest[i], o.Distance(c))
		}
	}
	return centers, nil
}

func toCluster(c clusters.Cluster) Cluster {
	out := Cluster{
		TrackIDs: make([]string, 0, len(c.Observations)),
		Centroid: make(map[string]float64, len(Columns)),
	}
	for _, o := range c.Observations {
		out.TrackIDs = append(out.TrackIDs, o.(observation).trackID)
	}
	for i, col := range Columns {
		if i < len(c.Center) {
			out.Centroid[col] = c.Center[i]
		}
	}
	return out
}

func centroid(obs clusters.Observations) clusters.Coordinates {
	center := make(clusters.Coordinates, len(Columns))
	for _, o := range obs {
		for i, v := range o.Coordinates() {
			center[i] += v
		}
	}
	for i := range center {
		center[i] /= float64(len(obs))
	}
	return center
}
