package pipeline

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"ContentEngine/internal/domain"
)

// Clustering algorithm names accepted by configuration.
const (
	AlgorithmDensity   = "density"
	AlgorithmPartition = "partition"
)

// kmeansSeed fixes partition clustering for reproducible runs.
const kmeansSeed = 42

// ClustererConfig carries the tuning knobs of both algorithms.
type ClustererConfig struct {
	Algorithm      string
	MinClusterSize int
	MinSamples     int
	Epsilon        float64
	PartitionCount int
}

// TopicClusterer groups deduplicated items into topic clusters over their
// embedding vectors.
type TopicClusterer struct {
	cfg    ClustererConfig
	logger *slog.Logger
}

// NewTopicClusterer builds a clusterer from configuration.
func NewTopicClusterer(cfg ClustererConfig, logger *slog.Logger) *TopicClusterer {
	if cfg.MinClusterSize < 1 {
		cfg.MinClusterSize = 3
	}
	if cfg.MinSamples < 1 {
		cfg.MinSamples = 2
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = 0.7
	}
	if cfg.PartitionCount < 1 {
		cfg.PartitionCount = 10
	}
	return &TopicClusterer{cfg: cfg, logger: logger}
}

// Cluster returns topic clusters sorted by descending total engagement.
// Noise items are dropped from the output entirely. Fewer than two items
// short-circuit without invoking any algorithm.
func (c *TopicClusterer) Cluster(items []domain.ContentItem, vectors [][]float32) ([]domain.TopicCluster, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := CheckDimensions(vectors, len(items)); err != nil {
		return nil, fmt.Errorf("cluster input: %w", err)
	}
	if len(items) == 1 {
		cluster := domain.TopicCluster{
			ID:             0,
			Items:          items,
			Centroid:       vectors[0],
			Representative: &items[0],
		}
		return []domain.TopicCluster{cluster}, nil
	}

	var labels []int
	switch c.cfg.Algorithm {
	case AlgorithmDensity:
		labels = c.clusterDensity(vectors)
	case AlgorithmPartition:
		labels = c.clusterPartition(vectors)
	default:
		if c.logger != nil {
			c.logger.Warn("unknown clustering algorithm, falling back to partition",
				"algorithm", c.cfg.Algorithm)
		}
		labels = c.clusterPartition(vectors)
	}

	return c.buildClusters(items, vectors, labels), nil
}

// clusterDensity runs DBSCAN with Euclidean distance. minSamples counts the
// point itself as its own neighbor. Clusters smaller than minClusterSize are
// reassigned to noise afterwards.
func (c *TopicClusterer) clusterDensity(vectors [][]float32) []int {
	n := len(vectors)
	const (
		unvisited = -2
		noise     = domain.NoiseLabel
	)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	neighborsOf := func(p int) []int {
		var neighbors []int
		for q := 0; q < n; q++ {
			if EuclideanDistance(vectors[p], vectors[q]) <= c.cfg.Epsilon {
				neighbors = append(neighbors, q)
			}
		}
		return neighbors
	}

	clusterID := 0
	for p := 0; p < n; p++ {
		if labels[p] != unvisited {
			continue
		}
		neighbors := neighborsOf(p)
		if len(neighbors) < c.cfg.MinSamples {
			labels[p] = noise
			continue
		}

		labels[p] = clusterID
		queue := append([]int(nil), neighbors...)
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			if labels[q] == noise {
				labels[q] = clusterID // border point
			}
			if labels[q] != unvisited {
				continue
			}
			labels[q] = clusterID
			qNeighbors := neighborsOf(q)
			if len(qNeighbors) >= c.cfg.MinSamples {
				queue = append(queue, qNeighbors...)
			}
		}
		clusterID++
	}

	// Demote undersized clusters to noise.
	sizes := map[int]int{}
	for _, label := range labels {
		if label >= 0 {
			sizes[label]++
		}
	}
	for i, label := range labels {
		if label >= 0 && sizes[label] < c.cfg.MinClusterSize {
			labels[i] = noise
		}
	}

	if c.logger != nil {
		clusters := 0
		noisy := 0
		seen := map[int]struct{}{}
		for _, label := range labels {
			if label == noise {
				noisy++
				continue
			}
			if _, ok := seen[label]; !ok {
				seen[label] = struct{}{}
				clusters++
			}
		}
		c.logger.Info("density clustering done", "clusters", clusters, "noise", noisy)
	}
	return labels
}

// clusterPartition runs Lloyd's k-means with kmeans++ seeding from a fixed
// source, k = min(partitionCount, n).
func (c *TopicClusterer) clusterPartition(vectors [][]float32) []int {
	n := len(vectors)
	k := c.cfg.PartitionCount
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(kmeansSeed))
	centroids := kmeansPlusPlusInit(vectors, k, rng)
	labels := make([]int, n)

	const maxIterations = 100
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := EuclideanDistance(v, centroids[0])
			for j := 1; j < k; j++ {
				if d := EuclideanDistance(v, centroids[j]); d < bestDist {
					best = j
					bestDist = d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		for j := 0; j < k; j++ {
			var members [][]float32
			for i, label := range labels {
				if label == j {
					members = append(members, vectors[i])
				}
			}
			if len(members) > 0 {
				centroids[j] = Centroid(members)
			}
		}
	}

	if c.logger != nil {
		c.logger.Info("partition clustering done", "k", k)
	}
	return labels
}

func kmeansPlusPlusInit(vectors [][]float32, k int, rng *rand.Rand) [][]float32 {
	n := len(vectors)
	centroids := make([][]float32, 0, k)
	centroids = append(centroids, vectors[rng.Intn(n)])

	distances := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, v := range vectors {
			best := EuclideanDistance(v, centroids[0])
			for _, c := range centroids[1:] {
				if d := EuclideanDistance(v, c); d < best {
					best = d
				}
			}
			distances[i] = best * best
			total += distances[i]
		}

		if total == 0 {
			centroids = append(centroids, vectors[rng.Intn(n)])
			continue
		}
		target := rng.Float64() * total
		var cumulative float64
		chosen := n - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, vectors[chosen])
	}
	return centroids
}

// buildClusters groups items by label, computes centroids and
// representatives, and orders clusters by total engagement.
func (c *TopicClusterer) buildClusters(items []domain.ContentItem, vectors [][]float32, labels []int) []domain.TopicCluster {
	byLabel := map[int][]int{}
	var order []int
	for idx, label := range labels {
		if label == domain.NoiseLabel {
			continue
		}
		if _, ok := byLabel[label]; !ok {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], idx)
	}

	clusters := make([]domain.TopicCluster, 0, len(order))
	for _, label := range order {
		indexes := byLabel[label]
		members := make([]domain.ContentItem, 0, len(indexes))
		memberVectors := make([][]float32, 0, len(indexes))
		for _, idx := range indexes {
			members = append(members, items[idx])
			memberVectors = append(memberVectors, vectors[idx])
		}

		centroid := Centroid(memberVectors)
		repIdx := 0
		repSim := CosineSimilarity(centroid, memberVectors[0])
		for i := 1; i < len(memberVectors); i++ {
			if sim := CosineSimilarity(centroid, memberVectors[i]); sim > repSim {
				repIdx = i
				repSim = sim
			}
		}

		clusters = append(clusters, domain.TopicCluster{
			ID:             label,
			Items:          members,
			Centroid:       centroid,
			Representative: &members[repIdx],
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].TotalEngagement() > clusters[j].TotalEngagement()
	})

	if c.logger != nil {
		sizes := make([]int, 0, len(clusters))
		for _, cl := range clusters {
			sizes = append(sizes, cl.Size())
		}
		c.logger.Info("built topic clusters", "count", len(clusters), "sizes", sizes)
	}
	return clusters
}
