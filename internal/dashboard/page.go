package dashboard

import "net/http"

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Axon Dashboard</title>
<style>
  :root {
    --bg: #0d1117;
    --surface: #161b22;
    --border: #30363d;
    --text: #e6edf3;
    --text-dim: #8b949e;
    --accent: #58a6ff;
    --green: #3fb950;
    --yellow: #d29922;
    --red: #f85149;
    --purple: #bc8cff;
  }
  * { box-sizing: border-box; margin: 0; padding: 0; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
    background: var(--bg);
    color: var(--text);
    font-size: 14px;
    line-height: 1.5;
    padding: 16px;
  }
  header {
    display: flex;
    align-items: center;
    justify-content: space-between;
    margin-bottom: 16px;
    padding-bottom: 12px;
    border-bottom: 1px solid var(--border);
  }
  header h1 { font-size: 20px; font-weight: 600; }
  header h1 span { color: var(--accent); }
  .meta { font-size: 12px; color: var(--text-dim); }
  .meta .live { color: var(--green); }
  .stats {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(110px, 1fr));
    gap: 12px;
    margin-bottom: 16px;
  }
  .stat {
    background: var(--surface);
    border: 1px solid var(--border);
    border-radius: 8px;
    padding: 10px 14px;
  }
  .stat .num { font-size: 22px; font-weight: 600; }
  .stat .label { font-size: 11px; color: var(--text-dim); text-transform: uppercase; letter-spacing: 0.5px; }
  .card {
    background: var(--surface);
    border: 1px solid var(--border);
    border-radius: 8px;
    overflow: hidden;
  }
  .card-header {
    padding: 10px 14px;
    border-bottom: 1px solid var(--border);
    font-weight: 600;
    font-size: 13px;
    text-transform: uppercase;
    letter-spacing: 0.5px;
    display: flex;
    justify-content: space-between;
  }
  .card-header select {
    background: var(--bg);
    color: var(--text);
    border: 1px solid var(--border);
    border-radius: 4px;
    font-size: 12px;
  }
  table { width: 100%; border-collapse: collapse; }
  th, td { padding: 8px 14px; text-align: left; font-size: 13px; }
  th { color: var(--text-dim); font-weight: 500; border-bottom: 1px solid var(--border); }
  tr + tr td { border-top: 1px solid var(--border); }
  td.dim { color: var(--text-dim); }
  .badge {
    display: inline-block;
    padding: 1px 8px;
    border-radius: 10px;
    font-size: 12px;
    border: 1px solid var(--border);
  }
  .badge.Created    { color: var(--text-dim); }
  .badge.InProgress { color: var(--accent); }
  .badge.Blocked    { color: var(--red); }
  .badge.Review     { color: var(--purple); }
  .badge.Done       { color: var(--green); }
  .badge.Archived   { color: var(--yellow); }
  .empty { padding: 20px 14px; color: var(--text-dim); text-align: center; }
</style>
</head>
<body>
<header>
  <h1><span>Axon</span> coordination hub</h1>
  <div class="meta"><span class="live">●</span> refreshed <span id="refreshed">—</span></div>
</header>

<div class="stats" id="stats"></div>

<div class="card">
  <div class="card-header">
    Tasks
    <select id="state-filter">
      <option value="">all states</option>
      <option>Created</option>
      <option>InProgress</option>
      <option>Blocked</option>
      <option>Review</option>
      <option>Done</option>
      <option>Archived</option>
    </select>
  </div>
  <div id="tasks"></div>
</div>

<script>
const esc = s => String(s ?? '').replace(/[&<>"]/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;'}[c]));

async function refresh() {
  try {
    const stateFilter = document.getElementById('state-filter').value;
    const tasksURL = '/api/tasks' + (stateFilter ? '?state=' + encodeURIComponent(stateFilter) : '');
    const [stats, tasks] = await Promise.all([
      fetch('/api/stats').then(r => r.json()),
      fetch(tasksURL).then(r => r.json()),
    ]);

    const cards = [
      ['agents', stats.agents],
      ['open sessions', stats.open_sessions],
      ['messages', stats.messages],
    ];
    for (const [state, n] of Object.entries(stats.tasks_by_state)) {
      cards.push([state, n]);
    }
    document.getElementById('stats').innerHTML = cards.map(([label, n]) =>
      '<div class="stat"><div class="num">' + esc(n) + '</div><div class="label">' + esc(label) + '</div></div>'
    ).join('');

    const rows = (tasks.tasks || []).map(t =>
      '<tr><td class="dim">' + t.id + '</td>' +
      '<td>' + esc(t.code) + '</td>' +
      '<td>' + esc(t.name) + '</td>' +
      '<td>' + esc(t.owner || '—') + '</td>' +
      '<td><span class="badge ' + esc(t.state) + '">' + esc(t.state) + '</span></td>' +
      '<td class="dim">' + esc(t.age) + '</td></tr>'
    ).join('');
    document.getElementById('tasks').innerHTML = rows
      ? '<table><tr><th>ID</th><th>Code</th><th>Name</th><th>Owner</th><th>State</th><th>Age</th></tr>' + rows + '</table>'
      : '<div class="empty">No tasks</div>';

    document.getElementById('refreshed').textContent = new Date().toLocaleTimeString();
  } catch (e) {
    document.getElementById('refreshed').textContent = 'unreachable';
  }
}

document.getElementById('state-filter').addEventListener('change', refresh);
refresh();
setInterval(refresh, 3000);
</script>
</body>
</html>
`
