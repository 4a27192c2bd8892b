package bot

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/rsi-tier-bot/internal/strategy"
)

// nextCandleBoundary returns the open time of the candle after the one
// containing now. Boundaries are aligned to the Unix epoch in UTC, which
// matches how exchanges cut minute, hour and day candles.
func nextCandleBoundary(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return now
	}
	now = now.UTC()
	elapsed := time.Duration(now.UnixNano()) % interval
	return now.Add(interval - elapsed)
}

func timeUntilNextCandle(now time.Time, interval time.Duration) time.Duration {
	return nextCandleBoundary(now, interval).Sub(now)
}

// logStatus writes the per-tick status line to the session log
func (bot *LiveBot) logStatus(price, rsi float64, decision strategy.Decision) {
	p := bot.state.Portfolio
	action := "HOLD"
	if ev, ok := decision.LastEvent(); ok {
		action = ev.Action.String()
	}
	bot.logger.Info("Price: %.4f | RSI: %.2f | Action: %s | Bank: %.4f | Holdings: %.8f | Value: %.4f | MaxDD: %.2f%%",
		price, rsi, action, p.Bank, p.Holdings, p.TotalValue(price), p.MaxDrawdown)
	if p.Holdings > 0 && p.BuyPrice > 0 {
		bot.logger.Info("Position: buy_price %.4f | unrealized %.2f%% | tiers %v/%v/%v | tp1_hit %v",
			p.BuyPrice, (price-p.BuyPrice)/p.BuyPrice*100,
			p.EnteredTier1, p.EnteredTier2, p.EnteredTier3, p.TP1Hit)
	}
}

// printStartupInfo prints the bot initialization table
func (bot *LiveBot) printStartupInfo() {
	t := table.NewWriter()
	t.SetOutputMirror(bot.out)
	t.SetTitle("BOT INITIALIZATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbol", bot.config.Symbol},
		{"⏰ Interval", bot.config.Interval},
		{"🏪 Market Data", bot.market.GetName()},
		{"🔧 Orders", executorName(bot.executor)},
		{"💾 State File", bot.persistence.Path()},
		{"📝 Session Log", bot.logger.Path()},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 15, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 50, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(bot.out)
}

// printBotConfiguration prints strategy parameters and the restored portfolio
func (bot *LiveBot) printBotConfiguration() {
	cfg := bot.strategy.Config()
	p := bot.state.Portfolio

	t := table.NewWriter()
	t.SetOutputMirror(bot.out)
	t.SetTitle("BOT CONFIGURATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📈 RSI", fmt.Sprintf("%d periods, %s", cfg.RSIPeriods, smoothingName(cfg.RSIEMA))},
		{"🟢 Buy Tiers", fmt.Sprintf("%.2f / %.2f / %.2f", cfg.BuyRSI1, cfg.BuyRSI2, cfg.BuyRSI3)},
		{"🎯 Take Profit", fmt.Sprintf("%.2f%% @ RSI %.2f, %.2f%% @ RSI %.2f",
			cfg.FirstTPPerc, cfg.RSIValue1, cfg.SecTPPerc, cfg.RSIValue2)},
		{"🛑 Stop Loss", fmt.Sprintf("%.2f%%", cfg.SLPerc)},
		{"🔄 Martingale", fmt.Sprintf("%v", cfg.Martingale)},
		{"💸 Fee Rate", fmt.Sprintf("%.4f%%", cfg.FeeRate*100)},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"💰 Bank", fmt.Sprintf("%.4f", p.Bank)},
		{"🪙 Holdings", fmt.Sprintf("%.8f", p.Holdings)},
		{"🏷️ Buy Price", fmt.Sprintf("%.4f", p.BuyPrice)},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", p.MaxDrawdown)},
		{"🔢 Trades", fmt.Sprintf("%d (%d wins, %d losses)", bot.state.TradeCount, p.Wins, p.Losses)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 15, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 50, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(bot.out)
}

func smoothingName(ema bool) string {
	if ema {
		return "EMA"
	}
	return "SMA"
}

func executorName(executor interface{}) string {
	if named, ok := executor.(interface{ GetName() string }); ok {
		return named.GetName()
	}
	return "custom"
}
