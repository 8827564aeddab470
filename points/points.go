package points

/*
Score 計算 FREE 賽事的名次積分
  - 最後一名: 1 分
  - 倒數第二名: 2 分
  - 第 4 名以後: total - place + 1
  - 第 3 名: 第 4 名積分 + 3
  - 第 2 名: 第 3 名積分 + 3
  - 第 1 名: 第 4 名積分 * 2

total 為賽事全部報名數 (含已淘汰)
*/
func Score(place, total int) int {
	fourth := total - 4 + 1

	switch {
	case place == total:
		return 1
	case place == total-1:
		return 2
	case place == 3:
		return fourth + 3
	case place == 2:
		return fourth + 3 + 3
	case place == 1:
		return fourth * 2
	default:
		return total - place + 1
	}
}

// Award is the final score of an eliminated entry, bounties included.
func Award(place, total, bountyCount int) int {
	return Score(place, total) + bountyCount
}
