// Package fake provides utilities for generating random status history for
// testing and development purposes.
package fake

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mcping/internal/models"
	"github.com/woozymasta/mcping/internal/storage"
)

// GenerateData populates the storage with a specified number of randomized
// poll samples. It simulates a handful of servers with varying player
// counts, latencies, and occasional outages.
func GenerateData(store *storage.Repository, count int) {
	addresses := []string{
		"mc.example.org", "play.cubecraft.test:25565", "survival.local:25570",
		"bedrock.example.org:19132", "skyblock.local",
	}
	versions := []string{"1.8.8", "1.19.3", "1.20.4", "1.21.1"}
	motds := []string{
		"A Minecraft Server", "§aSurvival §7| §eSeason 8", "Welcome home!",
		"§6SkyBlock §r- reset soon",
	}
	countries := []string{"US", "DE", "FR", "GB", "PL", "BR", "JP", ""}

	for i := 0; i < count; i++ {
		// Random date-time in 30 days range
		daysAgo := rand.Intn(30)
		polledAt := time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour).
			Add(-time.Duration(rand.Intn(1440)) * time.Minute)

		addr := addresses[rand.Intn(len(addresses))]
		max := 20 * (1 + rand.Intn(5))

		sample := models.Sample{
			PolledAt:  polledAt,
			Address:   addr,
			Edition:   models.EditionJava,
			Reachable: true,
			Online:    rand.Intn(max),
			Max:       max,
			Version:   versions[rand.Intn(len(versions))],
			MOTD:      motds[rand.Intn(len(motds))],
			LatencyMS: int64(5 + rand.Intn(250)),
			Country:   countries[rand.Intn(len(countries))],
		}

		// 10% of polls hit an unreachable server
		if rand.Float32() < 0.1 {
			sample = models.Sample{
				PolledAt: polledAt,
				Address:  addr,
				Edition:  sample.Edition,
				Error:    fmt.Sprintf("transport: connect: dial tcp: i/o timeout (attempt %d)", 1+rand.Intn(3)),
			}
		}

		if err := store.InsertSample(sample); err != nil {
			log.Warn().Err(err).Msg("Failed to generate fake sample")
		}
	}
}
