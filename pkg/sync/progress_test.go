package sync

import (
	"errors"
	"testing"
)

func TestProgressAtMostOneJob(t *testing.T) {
	p := NewProgress()

	jobID, err := p.Begin(KindDaily, 100)
	if err != nil {
		t.Fatalf("首个任务应启动成功: %v", err)
	}
	if jobID == "" {
		t.Fatal("任务ID不能为空")
	}

	p.Update(42, 100, "同步中...")

	// 运行中启动第二个任务必须被拒绝
	if _, err := p.Begin(KindStockList, 0); !errors.Is(err, ErrSyncRunning) {
		t.Fatalf("预期ErrSyncRunning，实际 %v", err)
	}

	// 在途任务状态不受被拒绝请求影响
	snap := p.Snapshot()
	if snap.Status != StatusRunning || snap.Kind != KindDaily {
		t.Errorf("在途任务状态被破坏: %+v", snap)
	}
	if snap.Current != 42 || snap.JobID != jobID {
		t.Errorf("在途任务进度被破坏: %+v", snap)
	}
}

func TestProgressLifecycle(t *testing.T) {
	p := NewProgress()

	if snap := p.Snapshot(); snap.Status != StatusIdle {
		t.Errorf("初始状态应为idle，实际 %s", snap.Status)
	}

	if _, err := p.Begin(KindStockList, 0); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	p.Finish(5000, 5000, "完成")

	snap := p.Snapshot()
	if snap.Status != StatusFinished || snap.Current != 5000 {
		t.Errorf("结束状态不符: %+v", snap)
	}

	// 结束后可启动新任务
	if _, err := p.Begin(KindDaily, 3); err != nil {
		t.Errorf("结束后应可启动新任务: %v", err)
	}
}

func TestProgressFail(t *testing.T) {
	p := NewProgress()

	if _, err := p.Begin(KindDaily, 10); err != nil {
		t.Fatalf("启动失败: %v", err)
	}
	p.Fail("数据库连接中断")

	snap := p.Snapshot()
	if snap.Status != StatusError {
		t.Errorf("失败状态应为error，实际 %s", snap.Status)
	}
	if snap.Message != "数据库连接中断" {
		t.Errorf("失败消息不符: %s", snap.Message)
	}

	// 错误终态后可重新启动
	if _, err := p.Begin(KindDaily, 10); err != nil {
		t.Errorf("错误终态后应可启动新任务: %v", err)
	}
}

func TestProgressUpdateIgnoredWhenNotRunning(t *testing.T) {
	p := NewProgress()
	p.Update(10, 100, "不应生效")

	snap := p.Snapshot()
	if snap.Current != 0 || snap.Message == "不应生效" {
		t.Errorf("空闲状态下Update不应生效: %+v", snap)
	}
}
