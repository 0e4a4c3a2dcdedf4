package genesis

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hengkyherdianto/Waves/inter/minerpk"
)

// ParseStakes reads a stake-distribution file: one `<pubkey> <stake>` pair
// per line, where the pubkey is the hex form produced by PubKey.String.
// Blank lines and `#` comments are ignored.
func ParseStakes(r io.Reader) ([]Account, error) {
	var accounts []Account
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("stakes line %d: want `<pubkey> <stake>`, got %q", lineNo, line)
		}
		pk, err := minerpk.FromString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("stakes line %d: %v", lineNo, err)
		}
		if _, err := pk.ECDSA(); err != nil {
			return nil, fmt.Errorf("stakes line %d: %v", lineNo, err)
		}
		stake, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stakes line %d: bad stake: %v", lineNo, err)
		}
		if stake == 0 {
			return nil, fmt.Errorf("stakes line %d: zero stake", lineNo)
		}
		accounts = append(accounts, Account{PublicKey: pk, Stake: stake})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("stakes file contains no accounts")
	}
	return accounts, nil
}
